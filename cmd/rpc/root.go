package rpc

import (
	"github.com/ValentinKolb/nanoKV/cmd/util"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/ValentinKolb/nanoKV/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcStore store.IStore

	// RPCCommands represents the RPC command group
	RPCCommands = &cobra.Command{
		Use:               "rpc",
		Short:             "Perform store operations over the RPC interface",
		PersistentPreRunE: setupRPCClient,
	}
)

func init() {
	util.SetupClientFlags(RPCCommands, "127.0.0.1:50051")

	RPCCommands.AddCommand(setCmd)
	RPCCommands.AddCommand(getCmd)
	RPCCommands.AddCommand(delCmd)
	RPCCommands.AddCommand(hasCmd)
	RPCCommands.AddCommand(flushCmd)
	RPCCommands.AddCommand(keysCmd)
	RPCCommands.AddCommand(getPrefixCmd)
	RPCCommands.AddCommand(delPrefixCmd)
	RPCCommands.AddCommand(valuesCmd)
	RPCCommands.AddCommand(sizeCmd)
	RPCCommands.AddCommand(casCmd)
	RPCCommands.AddCommand(infoCmd)

	casCmd.Flags().Bool("expect-absent", false, util.WrapString("Swap only if the key does not exist, the old value argument is omitted"))
	casCmd.Flags().Bool("delete", false, util.WrapString("Delete the key on match, the new value argument is omitted"))
}

// setupRPCClient initializes the RPC store client
func setupRPCClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	s, err := util.GetSerializer(viper.GetString("serializer"))
	if err != nil {
		return err
	}

	t, err := util.GetClientTransport(viper.GetString("transport"))
	if err != nil {
		return err
	}

	rpcStore, err = client.NewRPCStore(*util.GetClientConfig(), t, s)
	return err
}
