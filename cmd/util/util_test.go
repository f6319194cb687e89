package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
	assert.Empty(t, WrapString(""))
}

func TestGetSerializer(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary", "proto"} {
		s, err := GetSerializer(name)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}
	_, err := GetSerializer("xml")
	assert.Error(t, err)
}

func TestGetTransports(t *testing.T) {
	for _, name := range []string{"tcp", "unix"} {
		c, err := GetClientTransport(name)
		require.NoError(t, err)
		assert.NotNil(t, c)

		s, err := GetServerTransport(&common.ServerConfig{RPCTransport: name})
		require.NoError(t, err)
		assert.NotNil(t, s)
	}

	_, err := GetClientTransport("http")
	assert.Error(t, err)
	_, err = GetServerTransport(&common.ServerConfig{RPCTransport: "http"})
	assert.Error(t, err)
}

func TestGetClientConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	SetupClientFlags(cmd, "127.0.0.1:1")
	require.NoError(t, cmd.ParseFlags([]string{"--endpoints=a:1, b:2,,", "--retries=5"}))
	require.NoError(t, BindCommandFlags(cmd))

	config := GetClientConfig()
	assert.Equal(t, []string{"a:1", "b:2"}, config.Endpoints)
	assert.Equal(t, 5, config.RetryCount)
	assert.Equal(t, 10, config.TimeoutSecond)
	assert.Equal(t, 1, config.Connections())
}
