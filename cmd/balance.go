// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"context"
	"strconv"

	"blockwatch.cc/easkit/identity"
	"blockwatch.cc/easkit/rpc"
	"github.com/echa/config"
	"github.com/spf13/cobra"
)

var balanceBlock string

func init() {
	balanceCmd.Flags().StringVar(&balanceBlock, "block", string(rpc.Latest), "block `tag` or height")
	rootCmd.AddCommand(balanceCmd)
}

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Query the ether balance of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := identity.ParseAddress(args[0])
		if err != nil {
			return err
		}
		tag := rpc.BlockTag(balanceBlock)
		if height, err := strconv.ParseUint(balanceBlock, 10, 64); err == nil {
			tag = rpc.BlockAt(height)
		}
		c, err := newRPCClient()
		if err != nil {
			return err
		}
		if c == nil {
			return errNoRPC
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration("rpc.call_timeout"))
		defer cancel()
		wei, err := c.GetBalance(ctx, addr.Common(), tag)
		if err != nil {
			return err
		}
		if jsonout {
			return print(map[string]string{
				"address": addr.String(),
				"block":   string(tag),
				"wei":     wei.String(),
				"ether":   rpc.FormatEther(wei),
			})
		}
		printKV("Address", addr)
		printKV("Balance", rpc.FormatEther(wei)+" ETH")
		return nil
	},
}
