package relayer

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the relayers of the configured account.",
	Args:  cobra.NoArgs,
	RunE:  doList,
}

func doList(cmd *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	res, err := client.ListRelayers(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing relayers: %w", err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("listing relayers: %w", err)
	}
	if len(res.Data) == 0 {
		cmd.Println("No relayers found.")
		return nil
	}
	for _, r := range res.Data {
		state := "active"
		if !r.Available() {
			state = "paused"
		}
		cmd.Printf("%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Address, r.Network, state)
	}
	return nil
}
