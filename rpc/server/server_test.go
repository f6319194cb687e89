package server

import (
	"testing"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/ValentinKolb/nanoKV/lib/metrics"
	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/ValentinKolb/nanoKV/lib/store/mstore"
	rpccommon "github.com/ValentinKolb/nanoKV/rpc/common"
	"github.com/ValentinKolb/nanoKV/rpc/serializer"
	"github.com/ValentinKolb/nanoKV/rpc/transport/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterExecutesOperations(t *testing.T) {
	adapter := NewIStoreServerAdapter(mstore.NewMemoryStore(), nil)

	resp := adapter.Handle(rpccommon.NewRequest(ops.Set{Key: "k", Value: []byte("v")}))
	require.NoError(t, resp.Expect(rpccommon.MsgTKVSet))

	resp = adapter.Handle(rpccommon.NewRequest(ops.Get{Key: "k"}))
	require.NoError(t, resp.Expect(rpccommon.MsgTKVGet))
	assert.True(t, resp.Ok)
	assert.Equal(t, []byte("v"), resp.Value)

	resp = adapter.Handle(rpccommon.NewRequest(ops.Get{Key: "missing"}))
	require.NoError(t, resp.Expect(rpccommon.MsgTKVGet))
	assert.False(t, resp.Ok)

	resp = adapter.Handle(rpccommon.NewRequest(ops.Size{}))
	assert.Equal(t, uint64(1), resp.Count)
}

func TestAdapterRejectsResponseTypes(t *testing.T) {
	adapter := NewIStoreServerAdapter(mstore.NewMemoryStore(), nil)

	resp := adapter.Handle(&rpccommon.Message{MsgType: rpccommon.MsgTSuccess})
	assert.True(t, resp.IsError())
	assert.Equal(t, uint64(store.RetCInvalidOperation), resp.Code)
}

func TestAdapterWithoutStore(t *testing.T) {
	adapter := NewIStoreServerAdapter(nil, nil)

	resp := adapter.Handle(rpccommon.NewRequest(ops.Keys{}))
	assert.True(t, resp.IsError())
	assert.Equal(t, uint64(store.RetCInternalError), resp.Code)
}

func TestHandleCountsOperations(t *testing.T) {
	registry := metrics.NewRegistry()
	ser := serializer.NewBinarySerializer()
	srv := NewRPCServer(common.ServerConfig{}, tcp.NewTCPServerTransport(0, 1, 0), ser, mstore.NewMemoryStore(), registry)

	req, err := ser.Serialize(*rpccommon.NewRequest(ops.Exists{Key: "k"}))
	require.NoError(t, err)

	var resp rpccommon.Message
	require.NoError(t, ser.Deserialize(srv.handle(req), &resp))
	require.NoError(t, resp.Expect(rpccommon.MsgTKVExists))
	assert.False(t, resp.Ok)
	assert.Equal(t, uint64(1), registry.Operations(ops.KindExists))
}

func TestHandleUndecodableRequest(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	srv := NewRPCServer(common.ServerConfig{}, tcp.NewTCPServerTransport(0, 1, 0), ser, mstore.NewMemoryStore(), nil)

	var resp rpccommon.Message
	require.NoError(t, ser.Deserialize(srv.handle([]byte{1}), &resp))
	assert.True(t, resp.IsError())
	assert.Contains(t, resp.Err, "failed to deserialize request")
}
