package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/storacha/sandbox/pkg/database"
	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/relayer"
)

// RelayerConfig locates the relayer REST API.
type RelayerConfig struct {
	URL    string `mapstructure:"url" validate:"required,url" flag:"relayer-url"`
	APIKey string `mapstructure:"api_key" validate:"required" flag:"relayer-api-key"`
	// RelayerID pins the relayer used for funding. Empty picks the first
	// available one.
	RelayerID string        `mapstructure:"relayer_id" flag:"relayer-id"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=0" flag:"relayer-timeout"`
}

type ChainConfig struct {
	RPCURL      string `mapstructure:"rpc_url" validate:"required,url" flag:"rpc-url"`
	ChainID     uint64 `mapstructure:"chain_id" validate:"required" flag:"chain-id"`
	ExplorerURL string `mapstructure:"explorer_url" validate:"omitempty,url" flag:"explorer-url"`
}

type DelegateConfig struct {
	Address string `mapstructure:"address" validate:"required" flag:"delegate"`
	ABI     string `mapstructure:"abi" validate:"required" flag:"abi-file"`
}

func (d DelegateConfig) Target() delegate.Target {
	return delegate.Target{Address: d.Address, ABI: d.ABI}
}

type FundingConfig struct {
	ValueWei     uint64        `mapstructure:"value_wei" validate:"min=1" flag:"funding-value"`
	GasLimit     uint64        `mapstructure:"gas_limit" validate:"min=21000" flag:"funding-gas-limit"`
	Speed        string        `mapstructure:"speed" validate:"oneof=average fast fastest" flag:"funding-speed"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required" flag:"poll-interval"`
	// MaxPolls of zero polls until mined, failed or timed out.
	MaxPolls int           `mapstructure:"max_polls" validate:"min=0" flag:"max-polls"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"min=0" flag:"funding-timeout"`
}

type UpgradeConfig struct {
	GasLimit uint64 `mapstructure:"gas_limit" validate:"min=21000" flag:"upgrade-gas-limit"`
	// WaitReceipt blocks until the upgrade transaction is included.
	WaitReceipt bool `mapstructure:"wait_receipt" flag:"wait-receipt"`
}

type ServerConfig struct {
	Host       string        `mapstructure:"host" flag:"host"`
	Port       uint          `mapstructure:"port" validate:"min=1,max=65535" flag:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"min=0" flag:"session-ttl"`
}

type JournalConfig struct {
	// DSN of the sqlite journal. Empty keeps it in memory.
	DSN         string        `mapstructure:"dsn" flag:"journal"`
	JournalMode string        `mapstructure:"journal_mode" flag:"journal-mode"`
	SyncMode    string        `mapstructure:"sync_mode" flag:"journal-sync"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" validate:"min=0" flag:"journal-busy-timeout"`
	ForeignKeys bool          `mapstructure:"foreign_keys" flag:"journal-foreign-keys"`
}

type TelemetryConfig struct {
	SentryDSN         string `mapstructure:"sentry_dsn" validate:"omitempty,url" flag:"sentry-dsn"`
	SentryEnvironment string `mapstructure:"sentry_environment" flag:"sentry-environment"`
}

// RelayerClient is what the relayer subcommands need.
type RelayerClient struct {
	Relayer RelayerConfig `mapstructure:"relayer"`
}

func (c RelayerClient) Validate() error {
	return validateConfig(c)
}

// ChainClient is what chain queries need.
type ChainClient struct {
	Chain ChainConfig `mapstructure:"chain"`
}

func (c ChainClient) Validate() error {
	return validateConfig(c)
}

// Upgrade is the configuration of a single end to end upgrade.
type Upgrade struct {
	Relayer  RelayerConfig  `mapstructure:"relayer"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Delegate DelegateConfig `mapstructure:"delegate"`
	Funding  FundingConfig  `mapstructure:"funding"`
	Upgrade  UpgradeConfig  `mapstructure:"upgrade"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

func (c Upgrade) Validate() error {
	if err := validateConfig(c); err != nil {
		return err
	}
	return validateDomain(c.Delegate, c.Funding, c.Journal)
}

// Server is the configuration of the HTTP API.
type Server struct {
	Relayer   RelayerConfig   `mapstructure:"relayer"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Delegate  DelegateConfig  `mapstructure:"delegate"`
	Funding   FundingConfig   `mapstructure:"funding"`
	Upgrade   UpgradeConfig   `mapstructure:"upgrade"`
	Server    ServerConfig    `mapstructure:"server"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

func (c Server) Validate() error {
	if err := validateConfig(c); err != nil {
		return err
	}
	return validateDomain(c.Delegate, c.Funding, c.Journal)
}

// UpgradeSettings returns the subset of the server configuration used to run
// upgrades.
func (c Server) UpgradeSettings() Upgrade {
	return Upgrade{
		Relayer:  c.Relayer,
		Chain:    c.Chain,
		Delegate: c.Delegate,
		Funding:  c.Funding,
		Upgrade:  c.Upgrade,
		Journal:  c.Journal,
	}
}

// validateDomain checks what struct tags cannot express.
func validateDomain(d DelegateConfig, f FundingConfig, j JournalConfig) error {
	var errs error
	if err := d.Target().Validate(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("delegate: %w", err))
	}
	if _, err := relayer.ParseSpeed(f.Speed); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("funding: %w", err))
	}
	if _, err := database.ParseJournalMode(j.JournalMode); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("journal: %w", err))
	}
	if _, err := database.ParseSyncMode(j.SyncMode); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("journal: %w", err))
	}
	return errs
}

// Load reads T from the global viper instance and validates it.
// flags > environment variables > config file > defaults
func Load[T Validatable]() (T, error) {
	return LoadFrom[T](viper.GetViper())
}

func LoadFrom[T Validatable](v *viper.Viper) (T, error) {
	var out T
	if err := v.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}
