package relayer

import (
	"fmt"

	"github.com/spf13/cobra"
)

var BalanceCmd = &cobra.Command{
	Use:   "balance [relayer-id]",
	Short: "Print the balance of a relayer.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doBalance,
}

func doBalance(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	id, err := relayerID(cmd, client, cfg, args)
	if err != nil {
		return err
	}

	res, err := client.GetBalance(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("getting balance of relayer %s: %w", id, err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("getting balance of relayer %s: %w", id, err)
	}
	cmd.Printf("%g %s\n", res.Data.Balance, res.Data.Unit)
	return nil
}
