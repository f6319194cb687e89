// Package tcp implements the TCP socket transport of the RPC facade.
// It provides the connectors for the base package, which carries the
// framing, connection pooling and request correlation.
//
// Both sides disable Nagle's algorithm and enable keep-alive on every
// connection. The default server buffer size is 512 KB.
package tcp
