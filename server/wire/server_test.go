package wire

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/nanoKV/lib/metrics"
	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/lib/protocol"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/ValentinKolb/nanoKV/lib/store/mstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer runs a server on a loopback port until the test ends
func startServer(t *testing.T, idleTimeout time.Duration) (*Server, *metrics.Registry, store.IStore) {
	t.Helper()

	s := mstore.NewMemoryStore()
	registry := metrics.NewRegistry()
	server := NewServer(s, registry, idleTimeout)
	require.NoError(t, server.Listen("127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return server, registry, s
}

func dial(t *testing.T, server *Server) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", server.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, bufio.NewReader(conn)
}

func readLine(t *testing.T, conn net.Conn, r *bufio.Reader) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestEndToEndScenario(t *testing.T) {
	server, registry, _ := startServer(t, 0)
	conn, r := dial(t, server)

	steps := []struct {
		send []byte
		want string
	}{
		{[]byte{2, 0, 5, 'h', 'e', 'l', 'l', 'o', 0, 0, 0, 5, 'w', 'o', 'r', 'l', 'd'}, "OK\n"},
		{[]byte{1, 0, 5, 'h', 'e', 'l', 'l', 'o', 0, 0, 0, 0}, "DATA: world\n"},
		{[]byte{3, 0, 5, 'h', 'e', 'l', 'l', 'o', 0, 0, 0, 0}, "OK\n"},
		{[]byte{1, 0, 5, 'h', 'e', 'l', 'l', 'o', 0, 0, 0, 0}, "NOT_FOUND\n"},
		{[]byte{4}, "OK\n"},
	}

	for i, step := range steps {
		_, err := conn.Write(step.send)
		require.NoError(t, err)
		assert.Equal(t, step.want, readLine(t, conn, r), "step %d", i)
	}

	assert.Equal(t, uint64(2), registry.Operations(ops.KindGet))
	assert.Equal(t, uint64(1), registry.Operations(ops.KindSet))
	assert.Equal(t, uint64(1), registry.Operations(ops.KindDelete))
	assert.Equal(t, uint64(1), registry.Operations(ops.KindFlush))
}

func TestFragmentedAndPipelinedFrames(t *testing.T) {
	server, _, _ := startServer(t, 0)
	conn, r := dial(t, server)

	var stream []byte
	for i := 0; i < 20; i++ {
		var err error
		stream, err = protocol.AppendEncode(stream, ops.Set{Key: fmt.Sprintf("k%d", i), Value: []byte(fmt.Sprintf("v%d", i))})
		require.NoError(t, err)
		stream, err = protocol.AppendEncode(stream, ops.Get{Key: fmt.Sprintf("k%d", i)})
		require.NoError(t, err)
	}

	// write in odd sized pieces
	go func() {
		for len(stream) > 0 {
			n := 3
			if n > len(stream) {
				n = len(stream)
			}
			if _, err := conn.Write(stream[:n]); err != nil {
				return
			}
			stream = stream[n:]
		}
	}()

	for i := 0; i < 20; i++ {
		assert.Equal(t, "OK\n", readLine(t, conn, r))
		assert.Equal(t, fmt.Sprintf("DATA: v%d\n", i), readLine(t, conn, r))
	}
}

func TestUnknownOpcodeIsSkipped(t *testing.T) {
	server, registry, _ := startServer(t, 0)
	conn, r := dial(t, server)

	_, err := conn.Write([]byte{0xFF, 0x07, 4})
	require.NoError(t, err)
	assert.Equal(t, "OK\n", readLine(t, conn, r))
	assert.Equal(t, uint64(2), registry.SkippedBytes())
}

func TestConcurrentConnections(t *testing.T) {
	server, _, s := startServer(t, 0)

	const clients = 8
	const keys = 50

	var wg sync.WaitGroup
	for c := 0; c < clients; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			client, err := protocol.Dial(context.Background(), server.Addr().String(), 5*time.Second)
			if !assert.NoError(t, err) {
				return
			}
			defer client.Close()
			for k := 0; k < keys; k++ {
				assert.NoError(t, client.Set(fmt.Sprintf("c%d-k%d", c, k), []byte("x")))
			}
		}(c)
	}
	wg.Wait()

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, clients*keys, size)
}

func TestClientRoundTrip(t *testing.T) {
	server, _, _ := startServer(t, 0)

	client, err := protocol.Dial(context.Background(), server.Addr().String(), 5*time.Second)
	require.NoError(t, err)
	defer client.Close()

	_, ok, err := client.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Set("a", []byte("1")))
	v, ok, err := client.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, client.Delete("a"))
	require.NoError(t, client.Set("b", []byte("2")))
	require.NoError(t, client.Flush())

	_, ok, err = client.Get("b")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.Do(ops.Keys{})
	assert.ErrorIs(t, err, protocol.ErrUnsupported)
}

func TestIdleTimeoutClosesConnection(t *testing.T) {
	server, registry, _ := startServer(t, 100*time.Millisecond)
	conn, r := dial(t, server)

	_, err := conn.Write([]byte{4})
	require.NoError(t, err)
	assert.Equal(t, "OK\n", readLine(t, conn, r))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)

	assert.Eventually(t, func() bool { return registry.ActiveConnections() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestWireExecutorRejectsUnwiredOperations(t *testing.T) {
	e := wireExecutor{store: mstore.NewMemoryStore()}

	unwired := []ops.Operation{
		ops.Exists{Key: "k"}, ops.Keys{}, ops.KeysPrefix{Prefix: "k"}, ops.GetPrefix{Prefix: "k"},
		ops.DeletePrefix{Prefix: "k"}, ops.Values{}, ops.ValuesPrefix{Prefix: "k"}, ops.Size{},
		ops.CompareAndSwap{Key: "k"},
	}
	for _, op := range unwired {
		assert.Equal(t, "ERROR: command not implemented\n", string(e.execute(nil, op)), "%s", op)
	}

	assert.Equal(t, "OK\n", string(e.execute(nil, ops.Set{Key: "k", Value: []byte("v")})))
	assert.Equal(t, "DATA: v\n", string(e.execute(nil, ops.Get{Key: "k"})))
}

func TestServeWithoutListen(t *testing.T) {
	server := NewServer(mstore.NewMemoryStore(), nil, 0)
	assert.Nil(t, server.Addr())
	assert.Error(t, server.Serve(context.Background()))
}
