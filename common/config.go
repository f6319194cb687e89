package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Formatting helpers
// --------------------------------------------------------------------------

type configWriter struct {
	sb strings.Builder
}

func (w *configWriter) section(title string) {
	w.sb.WriteString("\n")
	w.sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
}

func (w *configWriter) field(name, value string) {
	w.sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
}

func endpointOrDisabled(endpoint string) string {
	if endpoint == "" {
		return "(disabled)"
	}
	return endpoint
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds the configuration of all facades served by one process.
// An empty endpoint disables the corresponding facade.
type ServerConfig struct {
	// binary protocol facade
	WireEndpoint      string
	IdleTimeoutSecond int64

	// HTTP/JSON facade
	HTTPEndpoint string

	// RPC facade
	RPCEndpoint       string
	RPCTransport      string
	RPCSerializer     string
	RPCWorkersPerConn int
	RPCBufferSize     int
	TimeoutSecond     int64

	// Logging configuration
	LogLevel string
}

// IdleTimeout returns the per-read deadline for binary protocol connections.
// Zero disables the deadline.
func (c *ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSecond) * time.Second
}

// Timeout returns the read/write deadline of RPC connections. Zero disables it.
func (c *ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// Validate checks that at least one facade is enabled and that the values are in range.
func (c *ServerConfig) Validate() error {
	if c.WireEndpoint == "" && c.HTTPEndpoint == "" && c.RPCEndpoint == "" {
		return fmt.Errorf("no endpoint configured: at least one of wire, http or rpc endpoint is required")
	}
	if c.IdleTimeoutSecond < 0 {
		return fmt.Errorf("idle timeout must not be negative (got %d)", c.IdleTimeoutSecond)
	}
	if c.TimeoutSecond < 0 {
		return fmt.Errorf("timeout must not be negative (got %d)", c.TimeoutSecond)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var w configWriter

	w.section("Binary Protocol")
	w.field("Endpoint", endpointOrDisabled(c.WireEndpoint))
	if c.IdleTimeoutSecond > 0 {
		w.field("Idle Timeout", fmt.Sprintf("%d sec", c.IdleTimeoutSecond))
	} else {
		w.field("Idle Timeout", "(disabled)")
	}

	w.section("HTTP API")
	w.field("Endpoint", endpointOrDisabled(c.HTTPEndpoint))

	w.section("RPC Server")
	w.field("Endpoint", endpointOrDisabled(c.RPCEndpoint))
	if c.RPCEndpoint != "" {
		w.field("Transport", c.RPCTransport)
		w.field("Serializer", c.RPCSerializer)
		w.field("Workers Per Connection", strconv.Itoa(c.RPCWorkersPerConn))
		w.field("Buffer Size", fmt.Sprintf("%d KB", c.RPCBufferSize/1024))
		w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	}

	w.section("Logging")
	w.field("Log Level", c.LogLevel)

	return w.sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds the connection parameters of the RPC and binary protocol clients.
type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// Timeout returns the per-request timeout. Zero disables it.
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// Connections returns the number of connections per endpoint, at least one.
func (c *ClientConfig) Connections() int {
	return int(math.Max(1, float64(c.ConnectionsPerEndpoint)))
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var w configWriter

	w.section("Client Configuration")
	w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.field("Retry Count", strconv.Itoa(c.RetryCount))
	w.field("Connections Per Endpoint", strconv.Itoa(c.Connections()))

	w.section("Endpoints")
	for i, endpoint := range c.Endpoints {
		w.field(strconv.Itoa(i), endpoint)
	}

	return w.sb.String()
}
