package client

import (
	"fmt"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	rpccommon "github.com/ValentinKolb/nanoKV/rpc/common"
	"github.com/ValentinKolb/nanoKV/rpc/serializer"
	"github.com/ValentinKolb/nanoKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter stores everything an RPC client needs to send requests
type rpcClientAdapter struct {
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invoke sends op to the server and returns the response message.
// Error responses are returned as errors, and the response type must match the request type.
func (a *rpcClientAdapter) invoke(op ops.Operation) (*rpccommon.Message, error) {
	req := rpccommon.NewRequest(op)

	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s request: %w", req.MsgType, err)
	}

	respBytes, err := a.transport.Send(reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &rpccommon.Message{}
	if err = a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("failed to deserialize %s response: %w", req.MsgType, err)
	}

	if err = resp.Expect(req.MsgType); err != nil {
		Logger.Debugf("%s request failed: %v", req.MsgType, err)
		return nil, err
	}
	return resp, nil
}
