// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"os"

	"github.com/cognumbers/cognumbers/commands"
	clog "github.com/cognumbers/cognumbers/common/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cognumbers-cli",
	Short: "cognumbers client tools",
}

func init() {
	commands.AddGlobalFlags(rootCmd)
	rootCmd.AddCommand(
		commands.GameCmd(),
		commands.ResolveCmd(),
		commands.LeaderboardCmd(),
		commands.VersionCmd(),
	)
}

//Run :
func Run() {
	clog.SetLogLevel("error")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
