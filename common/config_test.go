package common

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  ServerConfig
		wantErr string
	}{
		{"wire only", ServerConfig{WireEndpoint: ":7379", LogLevel: "info"}, ""},
		{"no facade", ServerConfig{LogLevel: "info"}, "no endpoint configured"},
		{"negative idle timeout", ServerConfig{HTTPEndpoint: ":8080", IdleTimeoutSecond: -1}, "idle timeout"},
		{"negative timeout", ServerConfig{RPCEndpoint: ":9090", TimeoutSecond: -2}, "timeout must not be negative"},
		{"bad log level", ServerConfig{WireEndpoint: ":7379", LogLevel: "loud"}, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerConfigString(t *testing.T) {
	c := ServerConfig{
		WireEndpoint:      "0.0.0.0:7379",
		IdleTimeoutSecond: 30,
		LogLevel:          "debug",
	}
	out := c.String()

	assert.Contains(t, out, "BINARY PROTOCOL")
	assert.Contains(t, out, "0.0.0.0:7379")
	assert.Contains(t, out, "30 sec")
	assert.Contains(t, out, "(disabled)")
	assert.NotContains(t, out, "Serializer")
	assert.Equal(t, 30*time.Second, c.IdleTimeout())
}

func TestClientConfig(t *testing.T) {
	c := ClientConfig{Endpoints: []string{"a:1", "b:2"}, TimeoutSecond: 2}
	assert.Equal(t, 1, c.Connections())
	assert.Equal(t, 2*time.Second, c.Timeout())

	out := c.String()
	assert.Contains(t, out, "a:1")
	assert.Contains(t, out, "b:2")
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]logger.LogLevel{
		"debug": logger.DEBUG,
		"INFO":  logger.INFO,
		"warn":  logger.WARNING,
		"error": logger.ERROR,
		"":      logger.INFO,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerFactory(&buf)("store")

	l.Debugf("hidden")
	l.Infof("hello %s", "world")
	l.SetLevel(logger.ERROR)
	l.Warningf("hidden")
	l.Errorf("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INFO  | store           | hello world")
	assert.Contains(t, lines[1], "ERROR | store           | boom")
}

func TestInitLoggers(t *testing.T) {
	require.NoError(t, InitLoggers("warn"))
	require.NoError(t, InitLoggers("debug"))
	assert.Error(t, InitLoggers("nope"))
}
