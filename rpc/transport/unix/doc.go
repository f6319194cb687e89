// Package unix implements the RPC transport over Unix domain sockets for
// clients on the same machine. The socket file is removed and recreated
// when the server starts listening.
//
// The default server buffer size is 64 KB.
package unix
