// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"fmt"
	"strings"

	"blockwatch.cc/easkit/identity"
	"github.com/echa/config"
	"github.com/spf13/cobra"
)

var (
	keyIndex      int64
	keyPath       string
	keyPassphrase string
)

func init() {
	keysCmd.PersistentFlags().Int64Var(&keyIndex, "index", -1, "derive account `n` on the default path")
	keysCmd.PersistentFlags().StringVar(&keyPath, "path", "", "BIP-32 derivation `path` (default from identity.path)")
	keysCmd.PersistentFlags().StringVar(&keyPassphrase, "passphrase", "", "optional BIP-39 passphrase")

	keysCmd.AddCommand(keysNewCmd)
	keysCmd.AddCommand(keysDeriveCmd)
	keysCmd.AddCommand(keysAddressCmd)
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate and derive Ethereum identities",
}

var keysNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a fresh mnemonic with key and address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deriver()
		if err != nil {
			return err
		}
		acc, err := identity.NewAccountWith(d)
		if err != nil {
			return err
		}
		return printAccount(acc)
	},
}

var keysDeriveCmd = &cobra.Command{
	Use:   "derive <word>...",
	Short: "Derive key and address from a 12 word mnemonic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// accept both quoted and unquoted phrases
		m, err := identity.ParseMnemonicString(strings.Join(args, " "))
		if err != nil {
			return err
		}
		d, err := deriver()
		if err != nil {
			return err
		}
		acc, err := d.Account(m)
		if err != nil {
			return err
		}
		return printAccount(acc)
	},
}

var keysAddressCmd = &cobra.Command{
	Use:   "address <key>",
	Short: "Compute the checksummed address of a private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := identity.DeriveAddressFromKey(args[0])
		if err != nil {
			return err
		}
		if jsonout {
			return print(map[string]identity.Address{"address": addr})
		}
		fmt.Println(addr)
		return nil
	},
}

func deriver() (identity.Deriver, error) {
	if keyIndex >= 0 && keyPath != "" {
		return identity.Deriver{}, fmt.Errorf("--index and --path are mutually exclusive")
	}
	d := identity.Deriver{
		Path:       config.GetString("identity.path"),
		Passphrase: keyPassphrase,
	}
	switch {
	case keyPath != "":
		d.Path = keyPath
	case keyIndex > int64(^uint32(0)>>1):
		return identity.Deriver{}, fmt.Errorf("account index %d out of range", keyIndex)
	case keyIndex >= 0:
		d.Path = identity.AccountPath(uint32(keyIndex))
	}
	if _, err := identity.ParsePath(d.Path); err != nil {
		return identity.Deriver{}, err
	}
	return d, nil
}

func printAccount(acc identity.Account) error {
	if jsonout {
		return print(acc)
	}
	printKV("Mnemonic", acc.Mnemonic)
	printKV("Private key", acc.PrivateKey)
	printKV("Address", acc.Address)
	return nil
}
