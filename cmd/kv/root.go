package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/nanoKV/cmd/util"
	"github.com/ValentinKolb/nanoKV/lib/protocol"
	"github.com/spf13/cobra"
)

var (
	wireClient *protocol.Client

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value operations over the binary protocol",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	util.SetupClientFlags(KeyValueCommands, "127.0.0.1:8080")

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(flushCmd)
}

// setupKVClient connects to the first configured endpoint
func setupKVClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoint configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), max(config.Timeout(), time.Second))
	defer cancel()

	var err error
	wireClient, err = protocol.Dial(ctx, config.Endpoints[0], config.Timeout())
	return err
}

func closeKVClient(_ *cobra.Command, _ []string) error {
	if wireClient == nil {
		return nil
	}
	return wireClient.Close()
}
