package balance

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/config"
)

var Cmd = &cobra.Command{
	Use:     "balance <address>",
	Short:   "Print the on-chain balance of an address.",
	Args:    cobra.ExactArgs(1),
	Example: "sandbox balance 0x63c0c19a282a1B52b07dD5a65b58948A07DAE32B",
	RunE:    doBalance,
}

func doBalance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid address: %s", args[0])
	}

	cfg, err := config.Load[config.ChainClient]()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.ChainID)
	if err != nil {
		return err
	}
	defer client.Close()

	bal, err := chain.BalanceOf(ctx, client, common.HexToAddress(args[0]))
	if err != nil {
		return err
	}
	cmd.Printf("%s ETH (%s wei)\n", bal.Ether, bal.Wei)
	return nil
}
