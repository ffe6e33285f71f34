package main

import (
	"fmt"
	"os"
	"path/filepath"

	cfg "github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/cli"

	cmd "statementnet_demo/cmd/commands"
	nm "statementnet_demo/node"
)

func main() {
	cfg.DefaultTendermintDir = ".statementnet"
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cli.NewCompletionCmd(rootCmd, true),
	)

	// NOTE:
	// Users wishing to use an external signer, a different availability
	// database or their own validation predicate can copy this file and use
	// something other than the DefaultNewNode function.
	nodeFunc := nm.DefaultNewNode

	// Create & start node
	rootCmd.AddCommand(
		cmd.InitFilesCmd,
		cmd.GenNodeKeyCmd,
		cmd.GenValidatorCmd,
		cmd.ShowNodeIDCmd,
		cmd.NewRunNodeCmd(nodeFunc),
	)
	baseCmd := cli.PrepareBaseCmd(rootCmd, "SN", os.ExpandEnv(filepath.Join("$HOME", cfg.DefaultTendermintDir)))

	if err := baseCmd.Execute(); err != nil {
		fmt.Println("error")
		panic(err)
	}
}
