package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/nanoKV/common"
	"github.com/ValentinKolb/nanoKV/rpc/serializer"
	"github.com/ValentinKolb/nanoKV/rpc/transport"
	"github.com/ValentinKolb/nanoKV/rpc/transport/tcp"
	"github.com/ValentinKolb/nanoKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (NKV_<FLAG>)
	EnvPrefix = "nkv"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and makes viper read NKV_ prefixed environment variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Client helpers
// --------------------------------------------------------------------------

// SetupClientFlags adds the connection flags shared by all client commands
func SetupClientFlags(cmd *cobra.Command, defaultEndpoint string) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "endpoints"
	cmd.PersistentFlags().String(key, defaultEndpoint, WrapString("The address of the nanoKV server. The rpc client accepts a comma-separated list and balances requests across it"))

	key = "conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Simultaneous connections per endpoint (rpc only)"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to try a request (rpc only)"))
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() *common.ClientConfig {
	var endpoints []string
	for _, e := range strings.Split(viper.GetString("endpoints"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}

	return &common.ClientConfig{
		Endpoints:              endpoints,
		TimeoutSecond:          viper.GetInt("timeout"),
		RetryCount:             viper.GetInt("retries"),
		ConnectionsPerEndpoint: viper.GetInt("conn-per-endpoint"),
	}
}

// --------------------------------------------------------------------------
// RPC stack selection
// --------------------------------------------------------------------------

// GetSerializer creates the serializer with the given name
func GetSerializer(name string) (serializer.IRPCSerializer, error) {
	switch name {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "gob":
		return serializer.NewGOBSerializer(), nil
	case "binary":
		return serializer.NewBinarySerializer(), nil
	case "proto":
		return serializer.NewProtoSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %q (expected json, gob, binary or proto)", name)
	}
}

// GetClientTransport creates the client transport with the given name
func GetClientTransport(name string) (transport.IRPCClientTransport, error) {
	switch name {
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %q (expected tcp or unix)", name)
	}
}

// GetServerTransport creates the server transport selected by config
func GetServerTransport(config *common.ServerConfig) (transport.IRPCServerTransport, error) {
	switch config.RPCTransport {
	case "tcp":
		return tcp.NewTCPServerTransport(config.RPCBufferSize, config.RPCWorkersPerConn, config.Timeout()), nil
	case "unix":
		return unix.NewUnixServerTransport(config.RPCBufferSize, config.RPCWorkersPerConn, config.Timeout()), nil
	default:
		return nil, fmt.Errorf("invalid transport %q (expected tcp or unix)", config.RPCTransport)
	}
}
