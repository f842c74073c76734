package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/config"
	"github.com/storacha/sandbox/pkg/database"
	"github.com/storacha/sandbox/pkg/database/gormdb"
	"github.com/storacha/sandbox/pkg/funding"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/store/txstore"
	"github.com/storacha/sandbox/pkg/upgrade"
	"github.com/storacha/sandbox/pkg/wallet"
)

// NewRelayerClient builds the relayer REST client from configuration.
func NewRelayerClient(cfg config.RelayerConfig) (relayer.Client, error) {
	endpoint, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing relayer URL: %w", err)
	}
	return relayer.New(&http.Client{Timeout: cfg.Timeout}, endpoint, cfg.APIKey), nil
}

type ChainParams struct {
	fx.In
	Config    config.Upgrade
	Lifecycle fx.Lifecycle
}

// NewChainClient dials the RPC endpoint and closes it on stop.
func NewChainClient(params ChainParams) (chain.Client, error) {
	cfg := params.Config.Chain
	c, err := chain.Dial(context.Background(), cfg.RPCURL, cfg.ChainID)
	if err != nil {
		return nil, err
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			c.Close()
			return nil
		},
	})
	return c, nil
}

// NewWallet returns the in-memory signing wallet. Keys still held when the
// app stops are wiped.
func NewWallet(lc fx.Lifecycle) *wallet.LocalWallet {
	w := wallet.NewMemoryWallet()
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return PurgeWallet(ctx, w)
		},
	})
	return w
}

// PurgeWallet deletes every key in w.
func PurgeWallet(ctx context.Context, w *wallet.LocalWallet) error {
	keys, err := w.List(ctx)
	if err != nil {
		return err
	}
	var errs error
	for _, k := range keys {
		errs = multierr.Append(errs, w.Delete(ctx, k.Address))
	}
	if len(keys) > 0 {
		log.Infow("purged burner keys", "count", len(keys))
	}
	return errs
}

type JournalParams struct {
	fx.In
	Config    config.Upgrade
	Lifecycle fx.Lifecycle
}

// JournalOptions maps journal configuration onto sqlite pragmas.
func JournalOptions(cfg config.JournalConfig) ([]database.Option, error) {
	journalMode, err := database.ParseJournalMode(cfg.JournalMode)
	if err != nil {
		return nil, err
	}
	syncMode, err := database.ParseSyncMode(cfg.SyncMode)
	if err != nil {
		return nil, err
	}
	return []database.Option{
		database.WithJournalMode(journalMode),
		database.WithSyncMode(syncMode),
		database.WithTimeout(cfg.BusyTimeout),
		database.WithForeignKeyConstraintsEnable(cfg.ForeignKeys),
	}, nil
}

// NewJournal opens the transaction journal, in memory unless a DSN is set.
func NewJournal(params JournalParams) (*txstore.Store, error) {
	opts, err := JournalOptions(params.Config.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal options: %w", err)
	}
	db, err := gormdb.New(params.Config.Journal.DSN, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	store, err := txstore.New(db)
	if err != nil {
		return nil, multierr.Append(err, sqlDB.Close())
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})
	return store, nil
}

// FunderOptions maps funding configuration onto funder options.
func FunderOptions(cfg config.Upgrade) ([]funding.Option, error) {
	speed, err := relayer.ParseSpeed(cfg.Funding.Speed)
	if err != nil {
		return nil, err
	}
	return []funding.Option{
		funding.WithRelayerID(cfg.Relayer.RelayerID),
		funding.WithValueWei(cfg.Funding.ValueWei),
		funding.WithGasLimit(cfg.Funding.GasLimit),
		funding.WithSpeed(speed),
		funding.WithPollInterval(cfg.Funding.PollInterval),
		funding.WithMaxPolls(cfg.Funding.MaxPolls),
		funding.WithTimeout(cfg.Funding.Timeout),
	}, nil
}

type FunderParams struct {
	fx.In
	Config  config.Upgrade
	Client  relayer.Client
	Journal *txstore.Store
}

func NewFunder(params FunderParams) (*funding.Funder, error) {
	opts, err := FunderOptions(params.Config)
	if err != nil {
		return nil, err
	}
	opts = append(opts, funding.WithJournal(params.Journal))
	return funding.New(params.Client, opts...), nil
}

func NewSender(cfg config.Upgrade, client chain.Client, w *wallet.LocalWallet) *chain.Sender {
	return chain.NewSender(client, w, cfg.Chain.ChainID, cfg.Upgrade.GasLimit)
}

type UpgradeParams struct {
	fx.In
	Config  config.Upgrade
	Funder  *funding.Funder
	Sender  *chain.Sender
	Wallet  *wallet.LocalWallet
	Journal *txstore.Store
	Chain   chain.Client
}

func NewUpgradeService(params UpgradeParams) *upgrade.Service {
	opts := []upgrade.Option{
		upgrade.WithExplorer(chain.Explorer(params.Config.Chain.ExplorerURL)),
		upgrade.WithJournal(params.Journal),
	}
	if params.Config.Upgrade.WaitReceipt {
		opts = append(opts, upgrade.WithReceiptWait(params.Chain, chain.DefaultReceiptInterval))
	}
	return upgrade.NewService(params.Funder, params.Sender, params.Wallet, opts...)
}
