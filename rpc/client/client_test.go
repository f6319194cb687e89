package client

import (
	"context"
	"errors"
	"testing"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/ValentinKolb/nanoKV/lib/store/mstore"
	storetesting "github.com/ValentinKolb/nanoKV/lib/store/testing"
	"github.com/ValentinKolb/nanoKV/rpc/serializer"
	"github.com/ValentinKolb/nanoKV/rpc/server"
	"github.com/ValentinKolb/nanoKV/rpc/transport/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serializers = map[string]func() serializer.IRPCSerializer{
	"json":   serializer.NewJSONSerializer,
	"gob":    serializer.NewGOBSerializer,
	"binary": serializer.NewBinarySerializer,
	"proto":  serializer.NewProtoSerializer,
}

// newRemoteStore starts a server on a fresh memory store and returns a client for it
func newRemoteStore(t *testing.T, newSerializer func() serializer.IRPCSerializer) store.IStore {
	t.Helper()

	srv := server.NewRPCServer(
		common.ServerConfig{RPCEndpoint: "127.0.0.1:0", RPCSerializer: "test"},
		tcp.NewTCPServerTransport(0, 4, 0),
		newSerializer(),
		mstore.NewMemoryStore(),
		nil,
	)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	s, err := NewRPCStore(
		common.ClientConfig{Endpoints: []string{srv.Addr().String()}, TimeoutSecond: 5, RetryCount: 1},
		tcp.NewTCPClientTransport(),
		newSerializer(),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.(*rpcStore).Close()
		cancel()
		<-done
	})
	return s
}

func TestRPCStoreConformance(t *testing.T) {
	for name, newSerializer := range serializers {
		storetesting.RunIStoreTests(t, name, func() store.IStore {
			return newRemoteStore(t, newSerializer)
		})
	}
}

func TestRPCStoreEmptyValues(t *testing.T) {
	for name, newSerializer := range serializers {
		t.Run(name, func(t *testing.T) {
			s := newRemoteStore(t, newSerializer)

			require.NoError(t, s.Set("empty", []byte{}))

			val, ok, err := s.Get("empty")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.NotNil(t, val)
			assert.Empty(t, val)

			// CAS distinguishes an empty expected value from an absent key
			swapped, err := s.CompareAndSwap("empty", nil, []byte("x"))
			require.NoError(t, err)
			assert.False(t, swapped)

			swapped, err = s.CompareAndSwap("empty", []byte{}, []byte("x"))
			require.NoError(t, err)
			assert.True(t, swapped)

			keys, err := s.KeysPrefix("nothing")
			require.NoError(t, err)
			assert.NotNil(t, keys)
			assert.Empty(t, keys)
		})
	}
}

func TestRPCStoreInfo(t *testing.T) {
	s := newRemoteStore(t, serializer.NewBinarySerializer)
	require.NoError(t, s.Set("a", []byte("1")))
	require.NoError(t, s.Set("b", []byte("2")))

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Keys)
	assert.Equal(t, map[string]string{"engine": "rpc"}, info.Metadata)
}

func TestRPCStoreSerializerMismatch(t *testing.T) {
	srv := server.NewRPCServer(
		common.ServerConfig{RPCEndpoint: "127.0.0.1:0"},
		tcp.NewTCPServerTransport(0, 1, 0),
		serializer.NewBinarySerializer(),
		mstore.NewMemoryStore(),
		nil,
	)
	require.NoError(t, srv.Listen())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()

	s, err := NewRPCStore(
		common.ClientConfig{Endpoints: []string{srv.Addr().String()}, TimeoutSecond: 5},
		tcp.NewTCPClientTransport(),
		serializer.NewJSONSerializer(),
	)
	require.NoError(t, err)
	defer s.(*rpcStore).Close()

	// the server cannot decode the request, the client cannot decode the answer
	_, _, err = s.Get("k")
	assert.Error(t, err)
}

func TestNewRPCStoreConnectError(t *testing.T) {
	_, err := NewRPCStore(common.ClientConfig{}, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
	assert.Error(t, err)

	var storeErr *store.Error
	assert.False(t, errors.As(err, &storeErr))
}
