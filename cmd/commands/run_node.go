package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	nm "statementnet_demo/node"
	"statementnet_demo/types"
)

var (
	parentHash string
)

// AddNodeFlags exposes the runtime flags of the node command.
func AddNodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("moniker", config.Moniker, "node name")

	// p2p flags
	cmd.Flags().String("p2p.laddr", config.P2P.ListenAddress, "node listen address. (0.0.0.0:0 means any interface, any port)")
	cmd.Flags().String("p2p.persistent_peers", config.P2P.PersistentPeers, "comma-delimited ID@host:port persistent peers")

	// rpc flags
	cmd.Flags().String("rpc.laddr", config.RPC.ListenAddress, "RPC listen address. Port required")

	// validation context
	cmd.Flags().StringVar(&parentHash, "parent-hash", "", "hex hash of the checked parent block; without it the node only relays")
}

// NewRunNodeCmd returns the command that allows the CLI to start a node.
func NewRunNodeCmd(nodeProvider nm.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"run"},
		Short:   "Run the statement node",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := nodeProvider(config, logger)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}

			if parentHash != "" {
				hash, err := hex.DecodeString(parentHash)
				if err != nil {
					return fmt.Errorf("invalid parent-hash: %w", err)
				}
				n.Router().SetCheckedParent(&types.BlockID{Hash: hash})
			}

			if err := n.Start(); err != nil {
				return fmt.Errorf("failed to start node: %w", err)
			}
			logger.Info("Started node", "nodeInfo", n.NodeInfo())

			// Stop upon receiving SIGTERM or CTRL-C.
			tmos.TrapSignal(logger, func() {
				if n.IsRunning() {
					if err := n.Stop(); err != nil {
						logger.Error("unable to stop the node", "error", err)
					}
				}
			})

			// Run forever.
			select {}
		},
	}

	AddNodeFlags(cmd)
	return cmd
}
