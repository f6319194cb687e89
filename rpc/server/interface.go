package server

import (
	rpccommon "github.com/ValentinKolb/nanoKV/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response.
	// If an error occurs, it is set in the response
	Handle(req *rpccommon.Message) (resp *rpccommon.Message)
}
