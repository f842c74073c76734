package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/database/gormdb"
	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/funding"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/session"
)

const (
	EnvPrefix         = "SANDBOX"
	DefaultServerHost = "localhost"
	DefaultServerPort = 3000
)

// Setup registers defaults and environment bindings on v. Every key needs a
// default for viper to pick it up from the environment during Unmarshal.
func Setup(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("relayer.url", "")
	v.SetDefault("relayer.api_key", "")
	v.SetDefault("relayer.relayer_id", "")
	v.SetDefault("relayer.timeout", 0)

	v.SetDefault("chain.rpc_url", chain.DefaultRPCURL)
	v.SetDefault("chain.chain_id", chain.SepoliaChainID)
	v.SetDefault("chain.explorer_url", chain.DefaultExplorerURL)

	v.SetDefault("delegate.address", delegate.DefaultAddress)
	v.SetDefault("delegate.abi", delegate.DefaultABI)

	v.SetDefault("funding.value_wei", funding.DefaultValueWei)
	v.SetDefault("funding.gas_limit", funding.TransferGasLimit)
	v.SetDefault("funding.speed", string(relayer.SpeedFastest))
	v.SetDefault("funding.poll_interval", relayer.DefaultPollInterval)
	v.SetDefault("funding.max_polls", 0)
	v.SetDefault("funding.timeout", funding.DefaultTimeout)

	v.SetDefault("upgrade.gas_limit", chain.DefaultUpgradeGasLimit)
	v.SetDefault("upgrade.wait_receipt", false)

	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.session_ttl", session.DefaultTTL)

	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.journal_mode", string(gormdb.DefaultJournalMode))
	v.SetDefault("journal.sync_mode", gormdb.DefaultSyncMode.String())
	v.SetDefault("journal.busy_timeout", gormdb.DefaultTimeout)
	v.SetDefault("journal.foreign_keys", gormdb.DefaultForeignKeyConstraintsEnable)

	v.SetDefault("telemetry.sentry_dsn", "")
	v.SetDefault("telemetry.sentry_environment", "")

	// names used by the relayer's own tooling
	_ = v.BindEnv("relayer.api_key", EnvPrefix+"_RELAYER_API_KEY", "RELAYER_API_KEY")
	_ = v.BindEnv("relayer.url", EnvPrefix+"_RELAYER_URL", "RELAYER_API_URL")
	_ = v.BindEnv("telemetry.sentry_dsn", EnvPrefix+"_TELEMETRY_SENTRY_DSN", "SENTRY_DSN")
	_ = v.BindEnv("telemetry.sentry_environment", EnvPrefix+"_TELEMETRY_SENTRY_ENVIRONMENT", "SENTRY_ENVIRONMENT")
}
