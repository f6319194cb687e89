package unix

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ValentinKolb/nanoKV/rpc/transport"
	"github.com/ValentinKolb/nanoKV/rpc/transport/base"
)

// DefaultBufferSize is the per-request read buffer of the server
const DefaultBufferSize = 64 * 1024 // 64 KB

// serverConnector implements the IServerConnector interface for Unix sockets
type serverConnector struct{}

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen(socketPath string) (net.Listener, error) {
	// Remove a stale socket file of a previous run
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Unix socket: %w", err)
	}
	return listener, nil
}

// NewUnixServerTransport creates a new Unix server transport.
// Zero values select the defaults.
func NewUnixServerTransport(bufferSize, workersPerConn int, writeTimeout time.Duration) transport.IRPCServerTransport {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize, workersPerConn, writeTimeout)
}
