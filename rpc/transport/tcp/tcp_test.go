package tcp

import (
	"context"
	"testing"
	"time"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPRoundTrip(t *testing.T) {
	srv := NewTCPServerTransport(0, 4, time.Second)
	srv.RegisterHandler(func(req []byte) []byte { return append(req, '!') })
	require.NoError(t, srv.Listen("127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := NewTCPClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{
		Endpoints:              []string{srv.Addr().String()},
		TimeoutSecond:          2,
		ConnectionsPerEndpoint: 2,
	}))

	for _, msg := range []string{"ping", "pong", ""} {
		resp, err := client.Send([]byte(msg))
		require.NoError(t, err)
		assert.Equal(t, []byte(msg+"!"), resp)
	}

	require.NoError(t, client.Close())
	cancel()
	assert.NoError(t, <-done)
}

func TestTCPListenError(t *testing.T) {
	srv := NewTCPServerTransport(0, 0, 0)
	assert.Error(t, srv.Listen("256.0.0.1:-1"))
}
