package relayer

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/storacha/sandbox/pkg/app"
	"github.com/storacha/sandbox/pkg/config"
	"github.com/storacha/sandbox/pkg/relayer"
)

var log = logging.Logger("cli/relayer")

var Cmd = &cobra.Command{
	Use:   "relayer",
	Short: "Inspect relayers and send transactions through them.",
}

func init() {
	Cmd.AddCommand(ListCmd)
	Cmd.AddCommand(BalanceCmd)
	Cmd.AddCommand(SendCmd)
	Cmd.AddCommand(TxCmd)
}

func newClient() (relayer.Client, config.RelayerConfig, error) {
	cfg, err := config.Load[config.RelayerClient]()
	if err != nil {
		return nil, config.RelayerConfig{}, fmt.Errorf("loading config: %w", err)
	}
	client, err := app.NewRelayerClient(cfg.Relayer)
	if err != nil {
		return nil, config.RelayerConfig{}, err
	}
	return client, cfg.Relayer, nil
}

// relayerID returns the explicit argument, the configured relayer, or the
// first available one, in that order.
func relayerID(cmd *cobra.Command, client relayer.Client, cfg config.RelayerConfig, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.RelayerID != "" {
		return cfg.RelayerID, nil
	}
	res, err := client.ListRelayers(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("listing relayers: %w", err)
	}
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("listing relayers: %w", err)
	}
	for _, r := range res.Data {
		if r.Available() {
			log.Infow("using relayer", "id", r.ID, "address", r.Address)
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("no available relayer")
}

// printTx writes the fields worth watching while a transaction settles.
func printTx(cmd *cobra.Command, tx relayer.Transaction) {
	cmd.Printf("ID:     %s\n", tx.ID)
	cmd.Printf("Status: %s\n", tx.Status)
	if tx.Hash != "" {
		cmd.Printf("Hash:   %s\n", tx.Hash)
	}
	if tx.From != "" {
		cmd.Printf("From:   %s\n", tx.From)
	}
	if tx.To != "" {
		cmd.Printf("To:     %s\n", tx.To)
	}
	if tx.Value != "" {
		cmd.Printf("Value:  %s wei\n", tx.Value)
	}
}
