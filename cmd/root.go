package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/nanoKV/cmd/kv"
	"github.com/ValentinKolb/nanoKV/cmd/rpc"
	"github.com/ValentinKolb/nanoKV/cmd/serve"
	"github.com/ValentinKolb/nanoKV/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "nkv",
		Short: "minimal networked key-value store",
		Long: fmt.Sprintf(`nanoKV (v%s)

An in-memory key-value store served over a compact binary protocol,
an HTTP/JSON API and a framed RPC interface.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nanoKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nanoKV v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(rpc.RPCCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer of the rpc interface (json, gob, binary, proto)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport of the rpc interface (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
