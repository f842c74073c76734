package app

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/fx"

	"github.com/storacha/sandbox/internal/telemetry"
	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/config"
	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/server"
	"github.com/storacha/sandbox/pkg/session"
	"github.com/storacha/sandbox/pkg/store/txstore"
	"github.com/storacha/sandbox/pkg/upgrade"
	"github.com/storacha/sandbox/pkg/wallet"
)

type SessionParams struct {
	fx.In
	Config    config.Server
	Lifecycle fx.Lifecycle
	Upgrades  *upgrade.Service
	Wallet    *wallet.LocalWallet
}

// NewSessionManager runs the expiry janitor for the lifetime of the app and
// cancels in-flight upgrades on stop.
func NewSessionManager(params SessionParams) *session.Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := session.NewManager(ctx, params.Upgrades,
		session.WithTTL(params.Config.Server.SessionTTL),
		session.WithTarget(delegate.Target{
			Address: params.Config.Delegate.Address,
			ABI:     params.Config.Delegate.ABI,
		}),
		session.WithKeyForgetter(params.Wallet),
	)
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go m.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			m.Wait()
			return nil
		},
	})
	return m
}

type APIParams struct {
	fx.In
	Config   config.Server
	Sessions *session.Manager
	Relayer  relayer.Client
	Chain    chain.Client
	Journal  *txstore.Store
}

func NewAPI(params APIParams) *server.API {
	return &server.API{
		Sessions: params.Sessions,
		Relayer:  params.Relayer,
		Chain:    params.Chain,
		Explorer: chain.Explorer(params.Config.Chain.ExplorerURL),
		History:  params.Journal,
	}
}

// Addr is the address the HTTP API listens on.
func Addr(cfg config.ServerConfig) string {
	return net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10))
}

func NewHTTPServer(lc fx.Lifecycle, cfg config.Server, api *server.API) *server.Server {
	srv := server.NewServer(api)
	addr := Addr(cfg.Server)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := srv.Start(addr); err != nil {
				return fmt.Errorf("starting server on %s: %w", addr, err)
			}
			log.Infow("server listening", "addr", srv.Addr())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

// SetupTelemetry enables Sentry when a DSN is configured.
func SetupTelemetry(lc fx.Lifecycle, cfg config.Server) error {
	if err := telemetry.SetupErrorReporting(cfg.Telemetry.SentryDSN, cfg.Telemetry.SentryEnvironment); err != nil {
		return fmt.Errorf("setting up error reporting: %w", err)
	}
	if !telemetry.Enabled() {
		return nil
	}
	log.Infow("error reporting enabled", "environment", cfg.Telemetry.SentryEnvironment)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			telemetry.Flush(flushTimeout)
			return nil
		},
	})
	return nil
}
