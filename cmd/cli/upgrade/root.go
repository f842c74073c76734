package upgrade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/storacha/sandbox/cmd/cliutil"
	"github.com/storacha/sandbox/pkg/app"
	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/config"
	"github.com/storacha/sandbox/pkg/upgrade"
)

var log = logging.Logger("cli/upgrade")

var Cmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Fund a burner account and delegate it to a smart account.",
	Long: `Funds a burner account through the relayer, signs an EIP-7702 authorization
for the delegate contract and submits the set-code transaction calling
initialize() on the upgraded account. A burner is generated unless one is given.`,
	Args:    cobra.NoArgs,
	Example: "sandbox upgrade --key-file burner.key --wait-receipt",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := cliutil.BindUpgradeFlags(cmd); err != nil {
			return err
		}
		return viper.BindPFlag("upgrade.wait_receipt", cmd.Flags().Lookup("wait-receipt"))
	},
	RunE: doUpgrade,
}

func init() {
	Cmd.Flags().String("private-key", "", "Hex encoded burner private key")
	Cmd.Flags().String("key-file", "", "File holding a hex encoded burner private key")
	cobra.CheckErr(Cmd.MarkFlagFilename("key-file"))
	Cmd.Flags().Bool("wait-receipt", false, "Wait for the upgrade transaction to be included")
	cliutil.AddUpgradeFlags(Cmd)
}

func doUpgrade(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load[config.Upgrade]()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	hexKey, _ := cmd.Flags().GetString("private-key")
	keyFile, _ := cmd.Flags().GetString("key-file")
	cred, generated, err := cliutil.Credential(hexKey, keyFile)
	if err != nil {
		return err
	}
	if generated {
		cliutil.Step("generated burner %s", cred.Address.Hex())
		cliutil.Step("private key %s", cred.PrivateKeyHex())
	}

	var svc *upgrade.Service
	fxApp := app.NewUpgradeApp(cfg, fx.Populate(&svc))
	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fxApp.Stop(stopCtx); err != nil {
			log.Errorw("stopping", "error", err)
		}
	}()

	explorer := chain.Explorer(cfg.Chain.ExplorerURL)
	cliutil.Step("funding %s through the relayer", cred.Address.Hex())
	res, err := svc.Upgrade(ctx, upgrade.Request{
		SessionID:  uuid.NewString(),
		Credential: cred,
		Target:     cfg.Delegate.Target(),
	})
	if res.Funding.Hash != "" {
		cliutil.Done("funded in %s", res.Funding.Hash)
	}
	if err != nil {
		return err
	}

	cliutil.Done("upgrade submitted %s", res.Hash.Hex())
	if res.ExplorerURL != "" {
		cmd.Println(res.ExplorerURL)
	}
	if res.Receipt != nil {
		cliutil.Done("included in block %s, gas used %d", res.Receipt.BlockNumber, res.Receipt.GasUsed)
	}
	if explorer != "" {
		cmd.Println(explorer.AddressURL(res.Account))
	}
	return nil
}
