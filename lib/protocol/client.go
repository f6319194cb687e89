package protocol

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/nanoKV/lib/ops"
)

// Client is a blocking client for the binary protocol. Every call writes one
// frame and waits for the matching response line.
//
// Thread-safety: Calls are serialized by an internal mutex, so a Client may be
// shared between goroutines.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader
	buf     []byte
	timeout time.Duration
}

// Dial connects to a wire endpoint (host:port). A non-zero timeout is applied
// as deadline to every request.
func Dial(ctx context.Context, address string, timeout time.Duration) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return NewClient(conn, timeout), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}
}

// Do sends op and returns the parsed reply. Transport errors are returned as
// error, server side failures as a Reply with StatusErr.
func (c *Client) Do(op ops.Operation) (ops.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame, err := AppendEncode(c.buf[:0], op)
	if err != nil {
		return ops.Reply{}, err
	}
	c.buf = frame

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return ops.Reply{}, fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	if _, err := c.conn.Write(frame); err != nil {
		return ops.Reply{}, fmt.Errorf("failed to write %s frame: %w", op.Kind(), err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return ops.Reply{}, fmt.Errorf("failed to read response: %w", err)
	}
	return ParseResponse(line)
}

// Get returns the value of key. The bool is false if the key is absent.
func (c *Client) Get(key string) ([]byte, bool, error) {
	r, err := c.Do(ops.Get{Key: key})
	if err != nil {
		return nil, false, err
	}
	switch r.Status {
	case ops.StatusOk:
		v, _ := r.Value.([]byte)
		return v, true, nil
	case ops.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, r.Err
	}
}

// Set stores value under key.
func (c *Client) Set(key string, value []byte) error {
	return c.expectOk(ops.Set{Key: key, Value: value})
}

// Delete removes key.
func (c *Client) Delete(key string) error {
	return c.expectOk(ops.Delete{Key: key})
}

// Flush removes every key.
func (c *Client) Flush() error {
	return c.expectOk(ops.Flush{})
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) expectOk(op ops.Operation) error {
	r, err := c.Do(op)
	if err != nil {
		return err
	}
	if r.IsErr() {
		return r.Err
	}
	if !r.IsOk() {
		return fmt.Errorf("unexpected reply for %s: %s", op.Kind(), r)
	}
	return nil
}
