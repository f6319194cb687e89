package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/nanoKV/rpc/transport"
	"github.com/ValentinKolb/nanoKV/rpc/transport/base"
)

const (
	// DefaultBufferSize is the per-request read buffer of the server
	DefaultBufferSize = 512 * 1024 // 512 KB

	keepAlivePeriod = 30 * time.Second
)

// serverConnector implements the IServerConnector interface for TCP sockets
type serverConnector struct{}

// tcpListener upgrades every accepted connection
type tcpListener struct {
	net.Listener
}

func (l tcpListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	if err := upgradeConnection(conn); err != nil {
		base.Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
	}
	return conn, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(endpoint string) (net.Listener, error) {
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %w", err)
	}
	return tcpListener{listener}, nil
}

// upgradeConnection disables Nagle's algorithm and enables keep-alive,
// requests are small and latency bound
func upgradeConnection(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}
	if err := tcpConn.SetNoDelay(true); err != nil {
		return err
	}
	if err := tcpConn.SetKeepAlive(true); err != nil {
		return err
	}
	return tcpConn.SetKeepAlivePeriod(keepAlivePeriod)
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPServerTransport creates a new TCP server transport.
// Zero values select the defaults.
func NewTCPServerTransport(bufferSize, workersPerConn int, writeTimeout time.Duration) transport.IRPCServerTransport {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize, workersPerConn, writeTimeout)
}
