package wire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/nanoKV/lib/metrics"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("wire")

// readBufferSize is the size of the per-connection read chunk
const readBufferSize = 4 * 1024

// acceptRetryDelay keeps a failing Accept from spinning
const acceptRetryDelay = 10 * time.Millisecond

// Server accepts binary protocol connections and serves each of them on its
// own goroutine. All connections share one store.
type Server struct {
	store       store.IStore
	registry    *metrics.Registry
	idleTimeout time.Duration
	bufferPool  *sync.Pool

	mu       sync.Mutex
	listener net.Listener
	conns    sync.WaitGroup
}

// NewServer creates a server for s. registry may be nil. A positive
// idleTimeout closes connections that stay silent for longer than that.
func NewServer(s store.IStore, registry *metrics.Registry, idleTimeout time.Duration) *Server {
	return &Server{
		store:       s,
		registry:    registry,
		idleTimeout: idleTimeout,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, readBufferSize)
			},
		},
	}
}

// Listen binds the TCP address. It must be called once before Serve.
func (s *Server) Listen(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until ctx is cancelled. Cancelling closes the
// listener, Serve then waits for the running connection handlers to finish
// their current batch and returns nil.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("wire server is not listening")
	}

	// connections get their own context so they can be closed on shutdown
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	Logger.Infof("Starting binary protocol server on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			Logger.Errorf("Accept error: %v", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		if s.registry != nil {
			s.registry.ConnectionOpened()
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(connCtx, conn)
		}()
	}

	// unblock handlers waiting in Read
	cancelConns()
	s.conns.Wait()
	Logger.Infof("Binary protocol server on %s stopped", listener.Addr())
	return nil
}

// ListenAndServe binds address and runs Serve.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	if err := s.Listen(address); err != nil {
		return err
	}
	return s.Serve(ctx)
}
