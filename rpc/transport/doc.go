// Package transport defines the interfaces for the framed request/response
// transport of the nanoKV RPC facade.
//
// Key Components:
//
//   - IRPCClientTransport: client side, handles connection management and
//     correlates responses with requests.
//
//   - IRPCServerTransport: server side, receives requests and passes them to
//     the registered ServerHandleFunc.
//
// Implementations live in the tcp and unix subpackages, both built on base.
package transport
