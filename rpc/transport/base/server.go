package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/nanoKV/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener for the endpoint and returns it
	Listen(endpoint string) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	listener          net.Listener
	bufferPool        *sync.Pool
	maxWorkersPerConn int
	writeTimeout      time.Duration

	connections *xsync.MapOf[uint64, net.Conn]
	nextConnID  atomic.Uint64
	wg          sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with per-connection worker pool.
// A writeTimeout of zero disables the write deadline.
func NewBaseServerTransport(connector IServerConnector, bufferSize int, maxWorkersPerConn int, writeTimeout time.Duration) transport.IRPCServerTransport {

	// minimum one worker per connection
	maxWorkersPerConn = max(maxWorkersPerConn, 1)
	bufferSize = max(bufferSize, 1024)

	return &serverTransport{
		connector:         connector,
		maxWorkersPerConn: maxWorkersPerConn,
		writeTimeout:      writeTimeout,
		connections:       xsync.NewMapOf[uint64, net.Conn](),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(endpoint string) error {
	listener, err := t.connector.Listen(endpoint)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	t.listener = listener
	return nil
}

func (t *serverTransport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *serverTransport) Serve(ctx context.Context) error {
	if t.listener == nil {
		return fmt.Errorf("%s transport: Serve called before Listen", t.connector.GetName())
	}
	if t.handler == nil {
		return fmt.Errorf("%s transport: no handler registered", t.connector.GetName())
	}

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), t.listener.Addr(), t.maxWorkersPerConn)

	// closing the listener unblocks Accept
	stop := context.AfterFunc(ctx, func() {
		_ = t.listener.Close()
		t.closeConnections()
	})
	defer stop()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				break
			}
			Logger.Errorf("Accept error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		id := t.nextConnID.Add(1)
		t.connections.Store(id, conn)
		t.wg.Add(1)

		// Handle the connection in a goroutine
		go func() {
			defer t.wg.Done()
			defer t.connections.Delete(id)
			t.handleConnection(conn)
		}()
	}

	// a connection accepted while shutting down may have missed the first sweep
	t.closeConnections()
	t.wg.Wait()
	Logger.Infof("Stopped %s server", t.connector.GetName())
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// closeConnections closes every open connection, which unblocks their reads
func (t *serverTransport) closeConnections() {
	t.connections.Range(func(_ uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})
}

// handleConnection handles incoming requests for one connection
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer conn.Close()

	// Create a semaphore to limit concurrent workers for this connection
	// The buffered channel acts as a counting semaphore
	workerSemaphore := make(chan struct{}, t.maxWorkersPerConn)

	// Create a wait group to wait for all workers to finish
	var wg sync.WaitGroup

	// Create a mutex to protect writes to the connection
	var connMutex sync.Mutex

	// Handler function that processes requests in worker goroutines
	handleResponse := func(requestID uint64, data []byte) {
		start := time.Now()
		resp := t.handler(data)
		Logger.Debugf("Processed request %d in %s", requestID, time.Since(start))

		// Protect writes to the connection with a mutex
		connMutex.Lock()
		defer connMutex.Unlock()

		if t.writeTimeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
				Logger.Errorf("Failed to set write deadline: %v", err)
				return
			}
		}

		// Write the response with the same requestID
		if err := writeFrame(conn, requestID, resp); err != nil {
			Logger.Errorf("Failed to write response %d: %v", requestID, err)
		}
	}

readLoop:
	for {
		// Get a buffer from the pool
		buf := t.bufferPool.Get().([]byte)

		requestID, data, err := readFrame(conn, buf)
		if err != nil {
			t.bufferPool.Put(buf)

			switch {
			case errors.Is(err, io.EOF):
				Logger.Debugf("Connection closed by client")
			case errors.Is(err, net.ErrClosed):
				Logger.Debugf("Connection closed on shutdown")
			default:
				Logger.Errorf("Error reading request: %v", err)
			}
			break readLoop
		}

		// Acquire a slot in the semaphore (blocks if maxWorkersPerConn is reached)
		workerSemaphore <- struct{}{}
		wg.Add(1)

		go func() {
			defer func() {
				t.bufferPool.Put(buf)
				<-workerSemaphore
				wg.Done()
			}()
			handleResponse(requestID, data)
		}()
	}

	// Wait for all workers to finish before closing the connection
	wg.Wait()
}
