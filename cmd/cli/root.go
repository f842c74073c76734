package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/storacha/sandbox/cmd/cli/balance"
	"github.com/storacha/sandbox/cmd/cli/burner"
	"github.com/storacha/sandbox/cmd/cli/relayer"
	"github.com/storacha/sandbox/cmd/cli/serve"
	"github.com/storacha/sandbox/cmd/cli/upgrade"
	"github.com/storacha/sandbox/cmd/cli/version"
	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/config"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

var log = logging.Logger("cmd")

const sandboxShortDescription = `
Sandbox upgrades throwaway accounts to smart accounts with EIP-7702
`

const sandboxLongDescription = `
Sandbox generates a burner account, funds it through a transaction relayer and
submits a set-code transaction delegating the account to a smart account
implementation. Run it as a one-shot command or serve the step by step wizard
over HTTP.
`

var (
	cfgFile  string
	logLevel string
	rootCmd  = &cobra.Command{
		Use:           "sandbox",
		Short:         sandboxShortDescription,
		Long:          sandboxLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "Error", "logging level")

	// shared by every command talking to the relayer or the chain
	rootCmd.PersistentFlags().String("relayer-url", "", "Base URL of the relayer API")
	cobra.CheckErr(viper.BindPFlag("relayer.url", rootCmd.PersistentFlags().Lookup("relayer-url")))
	rootCmd.PersistentFlags().String("relayer-api-key", "", "Relayer API key")
	cobra.CheckErr(viper.BindPFlag("relayer.api_key", rootCmd.PersistentFlags().Lookup("relayer-api-key")))
	rootCmd.PersistentFlags().String("relayer-id", "", "Relayer used for funding, the first available one when empty")
	cobra.CheckErr(viper.BindPFlag("relayer.relayer_id", rootCmd.PersistentFlags().Lookup("relayer-id")))
	rootCmd.PersistentFlags().Duration("relayer-timeout", 0, "Timeout of a single relayer request")
	cobra.CheckErr(viper.BindPFlag("relayer.timeout", rootCmd.PersistentFlags().Lookup("relayer-timeout")))

	rootCmd.PersistentFlags().String("rpc-url", chain.DefaultRPCURL, "JSON-RPC endpoint of the chain")
	cobra.CheckErr(viper.BindPFlag("chain.rpc_url", rootCmd.PersistentFlags().Lookup("rpc-url")))
	rootCmd.PersistentFlags().Uint64("chain-id", chain.SepoliaChainID, "Expected chain id")
	cobra.CheckErr(viper.BindPFlag("chain.chain_id", rootCmd.PersistentFlags().Lookup("chain-id")))
	rootCmd.PersistentFlags().String("explorer-url", chain.DefaultExplorerURL, "Block explorer base URL")
	cobra.CheckErr(viper.BindPFlag("chain.explorer_url", rootCmd.PersistentFlags().Lookup("explorer-url")))

	// register all commands and their subcommands
	rootCmd.AddCommand(burner.Cmd)
	rootCmd.AddCommand(relayer.Cmd)
	rootCmd.AddCommand(balance.Cmd)
	rootCmd.AddCommand(upgrade.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(version.Cmd)
}

func initConfig() {
	config.Setup(viper.GetViper())

	if logLevel != "" {
		ll, err := logging.LevelFromString(logLevel)
		cobra.CheckErr(err)
		logging.SetAllLoggers(ll)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		cobra.CheckErr(viper.ReadInConfig())
	}
}
