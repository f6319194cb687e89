package server

import (
	"context"
	"fmt"
	"net"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/ValentinKolb/nanoKV/lib/metrics"
	"github.com/ValentinKolb/nanoKV/lib/store"
	rpccommon "github.com/ValentinKolb/nanoKV/rpc/common"
	"github.com/ValentinKolb/nanoKV/rpc/serializer"
	"github.com/ValentinKolb/nanoKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// RPCServer exposes a store over a framed transport
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	adapter    IRPCServerAdapter
}

// NewRPCServer creates a new RPC server for s.
// The registry is optional, operations are counted when it is set.
//
// Usage:
//
//	srv := server.NewRPCServer(
//		config,
//		tcp.NewTCPServerTransport(0, 4, 0),
//		serializer.NewBinarySerializer(),
//		mstore.NewMemoryStore(),
//		nil,
//	)
//
//	if err := srv.ListenAndServe(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	s store.IStore,
	registry *metrics.Registry,
) *RPCServer {
	var observer store.Observer
	if registry != nil {
		observer = registry
	}

	srv := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		adapter:    NewIStoreServerAdapter(s, observer),
	}
	transport.RegisterHandler(srv.handle)
	return srv
}

// Listen binds the configured RPC endpoint
func (s *RPCServer) Listen() error {
	if err := s.transport.Listen(s.config.RPCEndpoint); err != nil {
		return fmt.Errorf("rpc server: %w", err)
	}
	Logger.Infof("RPC server listening on %s (%s serializer)", s.transport.Addr(), s.config.RPCSerializer)
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *RPCServer) Addr() net.Addr {
	return s.transport.Addr()
}

// Serve handles requests until ctx is cancelled
func (s *RPCServer) Serve(ctx context.Context) error {
	return s.transport.Serve(ctx)
}

// ListenAndServe binds the endpoint and serves until ctx is cancelled
func (s *RPCServer) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// handle is the transport handler: decode, execute, encode
func (s *RPCServer) handle(req []byte) []byte {
	var msg rpccommon.Message
	var resp *rpccommon.Message

	if err := s.serializer.Deserialize(req, &msg); err != nil {
		resp = rpccommon.NewErrorResponse(uint64(store.RetCInvalidOperation), fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		resp = s.adapter.Handle(&msg)
	}

	val, err := s.serializer.Serialize(*resp)
	if err != nil {
		Logger.Errorf("failed to serialize %s response: %v", resp.MsgType, err)
		val, _ = s.serializer.Serialize(*rpccommon.NewErrorResponse(uint64(store.RetCInternalError), "failed to serialize response"))
	}
	return val
}
