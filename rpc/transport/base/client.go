package base

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/ValentinKolb/nanoKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

var (
	// ErrClosed is returned by Send after Close
	ErrClosed = errors.New("transport closed")
	// ErrTimeout is returned when no response arrives within the configured timeout
	ErrTimeout = errors.New("request timed out")
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// link is one physical connection together with its pending requests.
// A broken link is never reused, the next request dials a new one.
type link struct {
	conn    net.Conn
	pending *xsync.MapOf[uint64, chan responseResult]
	writeMu sync.Mutex
}

// clientConnection is a slot in the pool, it owns at most one live link
type clientConnection struct {
	endpoint string
	parent   *clientTransport
	mu       sync.Mutex
	current  *link
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex atomic.Uint64 // Round Robin counter
	nextRequestID atomic.Uint64 // unique request IDs
	stopping      atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{connector: connector}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Close all existing connections
	t.closeConnections()

	t.config = config
	t.stopping.Store(false)

	perEndpoint := config.Connections()
	connections := make([]*clientConnection, 0, len(config.Endpoints)*perEndpoint)
	connected := 0

	for _, endpoint := range config.Endpoints {
		for i := 0; i < perEndpoint; i++ {
			c := &clientConnection{endpoint: endpoint, parent: t}

			// slots that fail now are dialed again on first use
			if _, err := c.ensure(); err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, perEndpoint, err)
			} else {
				connected++
			}
			connections = append(connections, c)
		}
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	if connected == 0 {
		t.closeConnections()
		return fmt.Errorf("failed to connect to any endpoint")
	}

	Logger.Infof("Connected %d out of %d connections to %d endpoints using %s transport",
		connected, len(connections), len(config.Endpoints), t.connector.GetName())
	return nil
}

func (t *clientTransport) Send(req []byte) (resp []byte, err error) {
	// We always try at least once
	attempts := max(t.config.RetryCount, 1)

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < attempts; i++ {
		if t.stopping.Load() {
			return nil, ErrClosed
		}

		conn := t.getNextConnection()
		if conn == nil {
			return nil, fmt.Errorf("no connections available")
		}

		data, err := conn.send(t.nextRequestID.Add(1), req)
		if err == nil {
			return data, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d failed: %v", i+1, attempts, err)

		if i+1 < attempts {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	return nil, fmt.Errorf("failed to send request after %d attempts: %w", attempts, lastErr)
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	switch len(t.connections) {
	case 0:
		return nil
	case 1:
		return t.connections[0]
	default:
		return t.connections[t.nextConnIndex.Add(1)%uint64(len(t.connections))]
	}
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	connections := t.connections
	t.connections = nil
	t.connectionsMu.Unlock()

	for _, c := range connections {
		c.close()
	}
}

// ensure returns the live link of c, dialing a new one if there is none
func (c *clientConnection) ensure() (*link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return c.current, nil
	}
	if c.parent.stopping.Load() {
		return nil, ErrClosed
	}

	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	l := &link{conn: conn, pending: xsync.NewMapOf[uint64, chan responseResult]()}
	c.current = l
	go c.readResponses(l)
	return l, nil
}

// drop detaches l from c if it is still the live link and closes it
func (c *clientConnection) drop(l *link) {
	c.mu.Lock()
	if c.current == l {
		c.current = nil
	}
	c.mu.Unlock()
	_ = l.conn.Close()
}

func (c *clientConnection) close() {
	c.mu.Lock()
	l := c.current
	c.current = nil
	c.mu.Unlock()

	if l != nil {
		_ = l.conn.Close()
	}
}

// send writes one request frame and waits for the matching response
func (c *clientConnection) send(requestID uint64, req []byte) ([]byte, error) {
	l, err := c.ensure()
	if err != nil {
		return nil, err
	}

	// Create and register a channel for the response
	respCh := make(chan responseResult, 1)
	l.pending.Store(requestID, respCh)
	defer l.pending.Delete(requestID)

	timeout := c.parent.config.Timeout()

	// Lock the connection only for writing
	l.writeMu.Lock()
	if timeout > 0 {
		_ = l.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	err = writeFrame(l.conn, requestID, req)
	l.writeMu.Unlock()

	if err != nil {
		c.drop(l)
		return nil, err
	}

	// Wait for response or timeout
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case result := <-respCh:
		return result.data, result.err
	case <-timeoutCh:
		return nil, ErrTimeout
	}
}

// readResponses reads responses in a loop and distributes them to waiting requests.
// On a read error every pending request of the link fails and the link is dropped.
func (c *clientConnection) readResponses(l *link) {
	for {
		requestID, data, err := readFrame(l.conn, nil)
		if err != nil {
			if !c.parent.stopping.Load() && !errors.Is(err, net.ErrClosed) {
				Logger.Warningf("Connection to %s lost: %v", c.endpoint, err)
			}
			c.drop(l)

			failure := fmt.Errorf("error reading response: %w", err)
			l.pending.Range(func(id uint64, ch chan responseResult) bool {
				select {
				case ch <- responseResult{err: failure}:
				default:
				}
				return true
			})
			return
		}

		// Find the corresponding request channel
		respCh, found := l.pending.Load(requestID)
		if !found {
			// the request already timed out
			Logger.Warningf("Received response for unknown request ID %d", requestID)
			continue
		}
		respCh <- responseResult{data: data}
	}
}
