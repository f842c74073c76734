package cliutil

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/database/gormdb"
	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/funding"
	"github.com/storacha/sandbox/pkg/relayer"
)

// upgradeFlags maps flag names to the config keys they override. The same
// keys are shared by several commands, so binding happens when a command runs
// rather than at init.
var upgradeFlags = map[string]string{
	"delegate":          "delegate.address",
	"funding-value":     "funding.value_wei",
	"funding-gas-limit": "funding.gas_limit",
	"funding-speed":     "funding.speed",
	"poll-interval":     "funding.poll_interval",
	"max-polls":         "funding.max_polls",
	"funding-timeout":   "funding.timeout",
	"upgrade-gas-limit": "upgrade.gas_limit",
	"journal":           "journal.dsn",
	"journal-mode":      "journal.journal_mode",
	"journal-sync":      "journal.sync_mode",
}

// AddUpgradeFlags registers the flags shared by the upgrade and serve
// commands.
func AddUpgradeFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("delegate", delegate.DefaultAddress, "Smart account implementation to delegate to")
	fs.String("abi-file", "", "JSON ABI of the delegate, must contain initialize()")
	cobra.CheckErr(cmd.MarkFlagFilename("abi-file", "json"))
	fs.Uint64("funding-value", funding.DefaultValueWei, "Wei sent to the burner before upgrading")
	fs.Uint64("funding-gas-limit", funding.TransferGasLimit, "Gas limit of the funding transfer")
	fs.String("funding-speed", string(relayer.SpeedFastest), "Relayer fee tier: average, fast or fastest")
	fs.Duration("poll-interval", relayer.DefaultPollInterval, "Interval between funding status polls")
	fs.Int("max-polls", 0, "Give up funding after this many polls, zero polls until mined")
	fs.Duration("funding-timeout", funding.DefaultTimeout, "Upper bound on waiting for funding")
	fs.Uint64("upgrade-gas-limit", chain.DefaultUpgradeGasLimit, "Gas limit of the set-code transaction")
	fs.String("journal", "", "Path of the sqlite transaction journal, in memory when empty")
	fs.String("journal-mode", string(gormdb.DefaultJournalMode), "sqlite journal_mode of a file backed journal")
	fs.String("journal-sync", gormdb.DefaultSyncMode.String(), "sqlite synchronous mode of the journal")
}

// BindUpgradeFlags binds the flags added by AddUpgradeFlags to viper and loads
// the delegate ABI file when one is given.
func BindUpgradeFlags(cmd *cobra.Command) error {
	for name, key := range upgradeFlags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}

	abiFile, err := cmd.Flags().GetString("abi-file")
	if err != nil {
		return err
	}
	if abiFile != "" {
		data, err := os.ReadFile(abiFile)
		if err != nil {
			return fmt.Errorf("reading delegate ABI: %w", err)
		}
		viper.Set("delegate.abi", string(data))
	}
	return nil
}
