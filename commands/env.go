// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands cognumbers-cli 子命令
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cognumbers/cognumbers/node"
	"github.com/cognumbers/cognumbers/types"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// LoadConfig reads the -f config (defaults when the file is missing), .env and the --rpc_laddr override
func LoadConfig(cmd *cobra.Command) (*types.Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()
	path, _ := cmd.Flags().GetString("conf")
	var (
		cfg *types.Config
		err error
	)
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		cfg, err = types.InitCfg(path)
	} else {
		cfg, err = types.InitCfgString("")
	}
	if err != nil {
		return nil, err
	}
	if addr, _ := cmd.Flags().GetString("rpc_laddr"); addr != "" {
		cfg.Chain.RPCAddr = addr
	}
	return cfg, nil
}

// withNode opens a node for the lifetime of fn, errors are printed the way every command reports them
func withNode(cmd *cobra.Command, fn func(ctx context.Context, n *node.Node) error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	cfg, err := LoadConfig(cmd)
	if err != nil {
		printErr(err)
		return
	}
	n, err := node.Open(ctx, cfg)
	if err != nil {
		printErr(err)
		return
	}
	defer n.Close()
	if err := fn(ctx, n); err != nil {
		printErr(err)
	}
}

func printErr(err error) {
	kind := types.KindOf(err)
	if kind == types.KindUnknown {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	pterm.Error.Printfln("[%s] %v", kind, err)
}

func printReceipt(action string, rcpt *types.Receipt) {
	pterm.Success.Printfln("%s tx %s block %d gas %d", action, rcpt.TxHash.Hex(), rcpt.BlockNumber, rcpt.GasUsed)
}

// AddGlobalFlags persistent flags shared by every command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("conf", "f", "cognumbers.toml", "config file")
	cmd.PersistentFlags().String("rpc_laddr", "", "chain rpc url, overrides chain.rpcAddr")
	cmd.PersistentFlags().Duration("timeout", 5*time.Minute, "command timeout")
}
