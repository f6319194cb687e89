// Package cmd implements the nkv command-line interface. It provides
// commands for running the server and for talking to it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: starts the binary protocol, HTTP and RPC facades
//   - kv: client commands over the binary protocol (get, set, del, flush)
//   - rpc: client commands over the RPC interface, covering every operation
//   - util: shared helpers for flags and configuration (internal use)
//
// Every flag can also be set through an environment variable NKV_<FLAG>,
// e.g. NKV_WIRE_ENDPOINT=0.0.0.0:8080. See nkv -help for all commands.
package cmd
