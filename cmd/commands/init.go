package commands

import (
	"github.com/spf13/cobra"
	cfg "github.com/tendermint/tendermint/config"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/p2p"

	"statementnet_demo/privval"
)

// InitFilesCmd initialises a fresh statement node home directory.
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a statement node",
	RunE:  initFiles,
}

func initFiles(cmd *cobra.Command, args []string) error {
	return initFilesWithConfig(config)
}

func initFilesWithConfig(config *cfg.Config) error {
	// private validator
	privValKeyFile := config.PrivValidatorKeyFile()

	var pv *privval.FilePV
	if tmos.FileExists(privValKeyFile) {
		pv = privval.LoadFilePV(privValKeyFile)
		logger.Info("Found private validator", "keyFile", privValKeyFile)
	} else {
		pv = privval.GenFilePV(privValKeyFile)
		pv.Save()
		logger.Info("Generated private validator", "keyFile", privValKeyFile)
	}
	logger.Info("Session key", "key", pv.GetSessionKey())

	nodeKeyFile := config.NodeKeyFile()
	if tmos.FileExists(nodeKeyFile) {
		logger.Info("Found node key", "path", nodeKeyFile)
	} else {
		if _, err := p2p.LoadOrGenNodeKey(nodeKeyFile); err != nil {
			return err
		}
		logger.Info("Generated node key", "path", nodeKeyFile)
	}

	return nil
}
