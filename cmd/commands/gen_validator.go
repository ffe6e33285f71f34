package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmjson "github.com/tendermint/tendermint/libs/json"
	tmos "github.com/tendermint/tendermint/libs/os"

	"statementnet_demo/privval"
)

// GenValidatorCmd generates the validator signing keypair.
var GenValidatorCmd = &cobra.Command{
	Use:     "gen-validator",
	Aliases: []string{"gen_validator"},
	Short:   "Generate new validator keypair",
	PreRun:  deprecateSnakeCase,
	Run:     genValidator,
}

func genValidator(cmd *cobra.Command, args []string) {
	privValKeyFile := config.PrivValidatorKeyFile()
	if tmos.FileExists(privValKeyFile) {
		logger.Info("Found private validator", "keyFile", privValKeyFile)
		return
	}

	pv := privval.GenFilePV(privValKeyFile)
	jsbz, err := tmjson.Marshal(pv)
	if err != nil {
		panic(err)
	}
	pv.Save()

	fmt.Printf(`%v
`, string(jsbz))
}
