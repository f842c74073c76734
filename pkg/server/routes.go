package server

import (
	"context"
	"net/http"

	logging "github.com/ipfs/go-log/v2"
	"github.com/labstack/echo/v4"

	"github.com/storacha/sandbox/pkg/build"
	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/session"
	"github.com/storacha/sandbox/pkg/store/txstore"
)

var log = logging.Logger("server/api")

// History returns journaled transactions by session or by upgraded account.
type History interface {
	History(ctx context.Context, sessionID string) ([]txstore.FundingTx, []txstore.UpgradeTx, error)
	Upgrades(ctx context.Context, account string) ([]txstore.UpgradeTx, error)
}

// API holds the backends of the HTTP routes. Routes whose backend is nil are
// not registered, which lets the relayer proxy run on its own.
type API struct {
	Sessions *session.Manager
	Relayer  relayer.Client
	Chain    chain.Client
	Explorer chain.Explorer
	History  History
}

func RegisterEchoRoutes(e *echo.Echo, api *API) {
	e.GET("/healthz", api.handleHealth)

	if api.Sessions != nil {
		// /api/sessions
		sessions := e.Group("/api/sessions")
		sessions.POST("", api.handleCreateSession)
		sessions.GET("/:id", api.handleGetSession)
		sessions.DELETE("/:id", api.handleDeleteSession)
		sessions.POST("/:id/burner", api.handleRegenerateBurner)
		sessions.POST("/:id/next", api.handleNext)
		sessions.POST("/:id/back", api.handleBack)
		sessions.PUT("/:id/target", api.handleSetTarget)
		sessions.POST("/:id/upgrade", api.handleStartUpgrade)
		if api.History != nil {
			sessions.GET("/:id/transactions", api.handleSessionHistory)
		}
	}

	if api.Relayer != nil {
		// /api/relayers
		relayers := e.Group("/api/relayers")
		relayers.GET("", api.handleListRelayers)
		relayers.GET("/:id/balance", api.handleRelayerBalance)
		relayers.GET("/:id/transactions/:txId", api.handleRelayerTransaction)
	}

	if api.Chain != nil {
		e.GET("/api/balance/:address", api.handleBalance)
	}

	if api.History != nil {
		e.GET("/api/accounts/:address/upgrades", api.handleAccountUpgrades)
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// handleHealth -> GET /healthz
func (api *API) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: build.Version})
}
