// Package app wires the sandbox components together with fx.
package app

import (
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/fx"

	"github.com/storacha/sandbox/pkg/config"
	"github.com/storacha/sandbox/pkg/server"
)

var log = logging.Logger("app")

const flushTimeout = 2 * time.Second

// UpgradeModule provides everything needed to run an upgrade. It expects a
// config.Upgrade to be supplied.
var UpgradeModule = fx.Module("upgrade",
	fx.Provide(
		func(cfg config.Upgrade) config.RelayerConfig { return cfg.Relayer },
		NewRelayerClient,
		NewChainClient,
		NewJournal,
		NewWallet,
		NewFunder,
		NewSender,
		NewUpgradeService,
	),
)

// ServerModule adds sessions and the HTTP API on top of UpgradeModule. It
// expects a config.Server to be supplied.
var ServerModule = fx.Module("server",
	fx.Provide(
		func(cfg config.Server) config.Upgrade { return cfg.UpgradeSettings() },
		NewSessionManager,
		NewAPI,
		NewHTTPServer,
	),
	fx.Invoke(SetupTelemetry),
	UpgradeModule,
)

// NewUpgradeApp creates an application able to run upgrades without serving
// the HTTP API.
func NewUpgradeApp(cfg config.Upgrade, opts ...fx.Option) *fx.App {
	baseOpts := []fx.Option{
		fx.WithLogger(NewFxLogger),
		fx.Supply(cfg),
		UpgradeModule,
	}
	return fx.New(append(baseOpts, opts...)...)
}

// NewServerApp creates the application behind `sandbox serve`.
func NewServerApp(cfg config.Server, opts ...fx.Option) *fx.App {
	baseOpts := []fx.Option{
		fx.WithLogger(NewFxLogger),
		fx.Supply(cfg),
		ServerModule,
		// the server is only reachable through lifecycle hooks
		fx.Invoke(func(*server.Server) {}),
	}
	return fx.New(append(baseOpts, opts...)...)
}
