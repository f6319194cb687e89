package unix

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixRoundTrip(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "nkv.sock")

	// a stale file from a previous run is replaced
	require.NoError(t, os.WriteFile(socket, nil, 0o600))

	srv := NewUnixServerTransport(0, 2, 0)
	srv.RegisterHandler(func(req []byte) []byte { return append(req, '!') })
	require.NoError(t, srv.Listen(socket))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := NewUnixClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{socket}, TimeoutSecond: 2}))

	resp, err := client.Send([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ping!"), resp)

	require.NoError(t, client.Close())
	cancel()
	assert.NoError(t, <-done)
}
