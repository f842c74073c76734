package relayer

import (
	"fmt"

	"github.com/spf13/cobra"
)

var TxCmd = &cobra.Command{
	Use:   "tx <transaction-id>",
	Short: "Show the status of a relayer transaction.",
	Args:  cobra.ExactArgs(1),
	RunE:  doTx,
}

func init() {
	addWaitFlags(TxCmd)
}

func doTx(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	id, err := relayerID(cmd, client, cfg, nil)
	if err != nil {
		return err
	}

	res, err := client.GetTransaction(cmd.Context(), id, args[0])
	if err != nil {
		return fmt.Errorf("getting transaction %s: %w", args[0], err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("getting transaction %s: %w", args[0], err)
	}
	printTx(cmd, res.Data)
	if res.Data.Mined() || res.Data.Failed() {
		return nil
	}
	return maybeWait(cmd, client, id, args[0])
}
