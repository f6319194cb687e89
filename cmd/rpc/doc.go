// Package rpc implements the nkv rpc command group, a client for every store
// operation over the RPC interface. The --transport and --serializer flags
// of the root command must match the server.
package rpc
