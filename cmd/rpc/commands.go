package rpc

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Set(args[0], []byte(args[1])); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, ok, err := rpcStore.Get(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, value=%s\n", key, ok, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := rpcStore.Has(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, exists=%v\n", args[0], ok)
			return nil
		},
	}
	flushCmd = &cobra.Command{
		Use:   "flush",
		Short: "Removes every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Clear(); err != nil {
				return err
			}
			fmt.Println("flush successfully")
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys [prefix]",
		Short: "Lists all keys, or the keys starting with prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var keys []string
			var err error
			if len(args) == 0 {
				keys, err = rpcStore.Keys()
			} else {
				keys, err = rpcStore.KeysPrefix(args[0])
			}
			if err != nil {
				return err
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
	getPrefixCmd = &cobra.Command{
		Use:   "get-prefix [prefix]",
		Short: "Reads all pairs whose key starts with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := rpcStore.GetPrefix(args[0])
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(pairs))
			for k := range pairs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s=%s\n", k, pairs[k])
			}
			return nil
		},
	}
	delPrefixCmd = &cobra.Command{
		Use:   "del-prefix [prefix]",
		Short: "Deletes all keys starting with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcStore.DeletePrefix(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d keys\n", n)
			return nil
		},
	}
	valuesCmd = &cobra.Command{
		Use:   "values [prefix]",
		Short: "Lists all values, or the values of keys starting with prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var values [][]byte
			var err error
			if len(args) == 0 {
				values, err = rpcStore.Values()
			} else {
				values, err = rpcStore.ValuesPrefix(args[0])
			}
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Printf("%s\n", v)
			}
			return nil
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Prints the number of keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcStore.Size()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
	casCmd = &cobra.Command{
		Use:   "cas [key] [old] [new]",
		Short: "Replaces the value of a key if it currently equals old",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			expectAbsent, _ := cmd.Flags().GetBool("expect-absent")
			del, _ := cmd.Flags().GetBool("delete")

			want := 3
			if expectAbsent {
				want--
			}
			if del {
				want--
			}
			if len(args) != want {
				return fmt.Errorf("expected %d arguments, got %d", want, len(args))
			}

			key, rest := args[0], args[1:]
			var oldValue, newValue []byte
			if !expectAbsent {
				oldValue, rest = []byte(rest[0]), rest[1:]
			}
			if !del {
				newValue = []byte(rest[0])
			}

			swapped, err := rpcStore.CompareAndSwap(key, oldValue, newValue)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, swapped=%v\n", key, swapped)
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints information about the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rpcStore.Info()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
)
