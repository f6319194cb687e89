// Package base implements the RPC transport independent of the network
// protocol. Protocol-specific packages (tcp, unix) plug in through the
// IClientConnector and IServerConnector interfaces.
//
// Frame format, all integers big endian:
//
//	[requestID:8][length:4][payload:length]
//
// The server answers with the requestID of the request, so responses on one
// connection may arrive out of order.
//
// Key Components:
//
//   - clientTransport: manages a pool of connections (ConnectionsPerEndpoint
//     per endpoint) with round-robin selection. Responses are correlated by
//     requestID. When a connection breaks, its pending requests fail and the
//     next request dials a new connection. Failed requests are retried with
//     exponential backoff.
//
//   - serverTransport: accepts connections and runs up to maxWorkersPerConn
//     handlers concurrently per connection. Read buffers come from a sync.Pool.
//     Cancelling the context passed to Serve closes the listener and every
//     open connection, in-flight handlers finish before Serve returns.
//
// All public methods are safe for concurrent use.
package base
