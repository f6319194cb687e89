package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/nanoKV/cmd/util"
	"github.com/ValentinKolb/nanoKV/common"
	"github.com/ValentinKolb/nanoKV/lib/metrics"
	"github.com/ValentinKolb/nanoKV/lib/store/mstore"
	"github.com/ValentinKolb/nanoKV/rpc/server"
	"github.com/ValentinKolb/nanoKV/server/rest"
	"github.com/ValentinKolb/nanoKV/server/wire"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var Logger = logger.GetLogger("cmd")

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the nanoKV server",
		Long:    `Start the nanoKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is NKV_<flag> (e.g. NKV_WIRE_ENDPOINT=0.0.0.0:8080). An empty endpoint disables the corresponding interface.`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	key := "wire-endpoint"
	ServeCmd.PersistentFlags().String(key, "127.0.0.1:8080", cmdUtil.WrapString("The address of the binary protocol listener"))

	key = "idle-timeout"
	ServeCmd.PersistentFlags().Int64(key, 0, cmdUtil.WrapString("Close binary protocol connections that send nothing for this many seconds (0 disables the timeout)"))

	key = "http-endpoint"
	ServeCmd.PersistentFlags().String(key, "127.0.0.1:3000", cmdUtil.WrapString("The address of the HTTP/JSON API"))

	key = "rpc-endpoint"
	ServeCmd.PersistentFlags().String(key, "127.0.0.1:50051", cmdUtil.WrapString("The address of the RPC interface (host:port for tcp, a socket path for unix)"))

	key = "rpc-workers"
	ServeCmd.PersistentFlags().Int(key, 8, cmdUtil.WrapString("Maximum number of concurrently handled requests per RPC connection"))

	key = "rpc-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Read buffer size per RPC request in KB (0 selects the transport default)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Write timeout of RPC responses in seconds"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig.WireEndpoint = viper.GetString("wire-endpoint")
	serveCmdConfig.IdleTimeoutSecond = viper.GetInt64("idle-timeout")
	serveCmdConfig.HTTPEndpoint = viper.GetString("http-endpoint")
	serveCmdConfig.RPCEndpoint = viper.GetString("rpc-endpoint")
	serveCmdConfig.RPCTransport = viper.GetString("transport")
	serveCmdConfig.RPCSerializer = viper.GetString("serializer")
	serveCmdConfig.RPCWorkersPerConn = viper.GetInt("rpc-workers")
	serveCmdConfig.RPCBufferSize = viper.GetInt("rpc-buffer") * 1024
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return serveCmdConfig.Validate()
}

// run starts every enabled interface on one shared store and blocks until
// the process is interrupted or one of them fails
func run(_ *cobra.Command, _ []string) error {
	config := serveCmdConfig

	if err := common.InitLoggers(config.LogLevel); err != nil {
		return err
	}
	Logger.Infof("Starting nanoKV %s", config.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := mstore.NewMemoryStore()
	registry := metrics.NewRegistry()

	// resolve the rpc stack before anything listens
	var rpcServer *server.RPCServer
	if config.RPCEndpoint != "" {
		ser, err := cmdUtil.GetSerializer(config.RPCSerializer)
		if err != nil {
			return err
		}
		t, err := cmdUtil.GetServerTransport(config)
		if err != nil {
			return err
		}
		rpcServer = server.NewRPCServer(*config, t, ser, s, registry)
	}

	g, ctx := errgroup.WithContext(ctx)

	if config.WireEndpoint != "" {
		srv := wire.NewServer(s, registry, config.IdleTimeout())
		g.Go(func() error {
			return srv.ListenAndServe(ctx, config.WireEndpoint)
		})
	}

	if config.HTTPEndpoint != "" {
		srv := rest.NewServer(s, registry)
		g.Go(func() error {
			return srv.ListenAndServe(ctx, config.HTTPEndpoint)
		})
	}

	if rpcServer != nil {
		g.Go(func() error {
			return rpcServer.ListenAndServe(ctx)
		})
	}

	err := g.Wait()
	Logger.Infof("nanoKV stopped")
	return err
}
