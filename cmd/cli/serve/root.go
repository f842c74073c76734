package serve

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/storacha/sandbox/cmd/cliutil"
	"github.com/storacha/sandbox/pkg/app"
	"github.com/storacha/sandbox/pkg/config"
	"github.com/storacha/sandbox/pkg/server"
	"github.com/storacha/sandbox/pkg/session"
)

var log = logging.Logger("cmd/serve")

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upgrade wizard HTTP API.",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := cliutil.BindUpgradeFlags(cmd); err != nil {
			return err
		}
		for name, key := range map[string]string{
			"host":               "server.host",
			"port":               "server.port",
			"session-ttl":        "server.session_ttl",
			"sentry-dsn":         "telemetry.sentry_dsn",
			"sentry-environment": "telemetry.sentry_environment",
		} {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: doServe,
}

func init() {
	Cmd.Flags().String("host", config.DefaultServerHost, "Host to listen on")
	Cmd.Flags().Uint("port", config.DefaultServerPort, "Port to listen on")
	Cmd.Flags().Duration("session-ttl", session.DefaultTTL, "Idle sessions are dropped after this long")
	Cmd.Flags().String("sentry-dsn", "", "Sentry DSN, error reporting is off when empty")
	Cmd.Flags().String("sentry-environment", "", "Sentry environment")
	cliutil.AddUpgradeFlags(Cmd)
}

func doServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load[config.Server]()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Journal.DSN != "" {
		if _, err := cliutil.Mkdirp(filepath.Dir(cfg.Journal.DSN)); err != nil {
			return err
		}
	}

	var srv *server.Server
	fxApp := app.NewServerApp(cfg, fx.Populate(&srv))
	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	cliutil.PrintHero(srv.Addr())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	log.Info("server stopped")
	return nil
}
