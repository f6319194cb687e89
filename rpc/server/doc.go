// Package server implements the RPC facade of nanoKV. Requests arrive as
// serialized rpc/common.Message values over a transport.IRPCServerTransport,
// are converted to operations and executed with store.Apply against the
// shared store.
//
// Key Components:
//
//   - IRPCServerAdapter: turns a request message into a response message.
//
//   - NewIStoreServerAdapter: the adapter for store.IStore, it accepts every
//     operation of the ops union.
//
//   - RPCServer: binds transport, serializer and adapter. Requests that
//     cannot be decoded are answered with an error response, the connection
//     stays open.
//
// Thread Safety:
//
//	Requests are handled concurrently, the store provides the ordering.
//	Listen must be called once before Serve.
package server
