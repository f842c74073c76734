package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/server/middleware"
	"github.com/storacha/sandbox/pkg/session"
	"github.com/storacha/sandbox/pkg/store/txstore"
	"github.com/storacha/sandbox/pkg/wizard"
)

type TargetBody struct {
	Address string `json:"address"`
	ABI     string `json:"abi"`
}

type SessionResponse struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	// PrivateKey is only returned when a burner is generated.
	PrivateKey  string     `json:"privateKey,omitempty"`
	AddressURL  string     `json:"addressUrl,omitempty"`
	Step        string     `json:"step"`
	Progress    int        `json:"progress"`
	Target      TargetBody `json:"target"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	FundingTxID string     `json:"fundingTxId,omitempty"`
	TxHash      string     `json:"txHash,omitempty"`
	ExplorerURL string     `json:"explorerUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type HistoryResponse struct {
	Funding  []txstore.FundingTx `json:"funding"`
	Upgrades []txstore.UpgradeTx `json:"upgrades"`
}

type UpgradesResponse struct {
	Account  string              `json:"account"`
	Upgrades []txstore.UpgradeTx `json:"upgrades"`
}

func (api *API) sessionResponse(s session.Snapshot, withKey bool) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID,
		Address:   s.Burner.Address.Hex(),
		Step:      string(s.Step),
		Progress:  s.Progress,
		Target:    TargetBody{Address: s.Target.Address, ABI: s.Target.ABI},
		Status:    string(s.Status),
		Error:     s.Error,
		CreatedAt: s.CreatedAt,
	}
	if withKey && s.Burner.PrivateKey != nil {
		resp.PrivateKey = s.Burner.PrivateKeyHex()
	}
	if api.Explorer != "" {
		resp.AddressURL = api.Explorer.AddressURL(s.Burner.Address)
	}
	if r := s.Result; r != nil {
		resp.FundingTxID = r.Funding.ID
		if r.Hash != (common.Hash{}) {
			resp.TxHash = r.Hash.Hex()
			resp.ExplorerURL = r.ExplorerURL
			if resp.ExplorerURL == "" && api.Explorer != "" {
				resp.ExplorerURL = api.Explorer.TxURL(r.Hash)
			}
		}
	}
	return resp
}

func sessionError(operation string, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, session.ErrUpgradeInProgress),
		errors.Is(err, session.ErrWrongStep),
		errors.Is(err, wizard.ErrNoTransition),
		errors.Is(err, wizard.ErrNoBurner):
		code = http.StatusConflict
	}
	apiErr := middleware.NewError(operation, err.Error(), err, code)
	if code == http.StatusInternalServerError {
		apiErr = apiErr.WithPublicMessage("internal error")
	}
	return apiErr
}

// handleCreateSession -> POST /api/sessions
func (api *API) handleCreateSession(c echo.Context) error {
	snap, err := api.Sessions.Create()
	if err != nil {
		return sessionError("CreateSession", err)
	}
	return c.JSON(http.StatusCreated, api.sessionResponse(snap, true))
}

// handleGetSession -> GET /api/sessions/:id
func (api *API) handleGetSession(c echo.Context) error {
	snap, err := api.Sessions.Get(c.Param("id"))
	if err != nil {
		return sessionError("GetSession", err)
	}
	return c.JSON(http.StatusOK, api.sessionResponse(snap, false))
}

// handleDeleteSession -> DELETE /api/sessions/:id
func (api *API) handleDeleteSession(c echo.Context) error {
	if err := api.Sessions.Delete(c.Param("id")); err != nil {
		return sessionError("DeleteSession", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleRegenerateBurner -> POST /api/sessions/:id/burner
func (api *API) handleRegenerateBurner(c echo.Context) error {
	snap, err := api.Sessions.Regenerate(c.Param("id"))
	if err != nil {
		return sessionError("RegenerateBurner", err)
	}
	return c.JSON(http.StatusOK, api.sessionResponse(snap, true))
}

// handleNext -> POST /api/sessions/:id/next
func (api *API) handleNext(c echo.Context) error {
	snap, err := api.Sessions.Next(c.Param("id"))
	if err != nil {
		return sessionError("NextStep", err)
	}
	return c.JSON(http.StatusOK, api.sessionResponse(snap, false))
}

// handleBack -> POST /api/sessions/:id/back
func (api *API) handleBack(c echo.Context) error {
	snap, err := api.Sessions.Back(c.Param("id"))
	if err != nil {
		return sessionError("PreviousStep", err)
	}
	return c.JSON(http.StatusOK, api.sessionResponse(snap, false))
}

// handleSetTarget -> PUT /api/sessions/:id/target
func (api *API) handleSetTarget(c echo.Context) error {
	var body TargetBody
	if err := c.Bind(&body); err != nil {
		return middleware.NewError("SetTarget", "invalid request body", err, http.StatusBadRequest)
	}
	target := delegate.Target{Address: body.Address, ABI: body.ABI}
	if err := target.Validate(); err != nil {
		return middleware.NewError("SetTarget", err.Error(), err, http.StatusBadRequest)
	}
	snap, err := api.Sessions.SetTarget(c.Param("id"), target)
	if err != nil {
		return sessionError("SetTarget", err)
	}
	return c.JSON(http.StatusOK, api.sessionResponse(snap, false))
}

// handleStartUpgrade -> POST /api/sessions/:id/upgrade
func (api *API) handleStartUpgrade(c echo.Context) error {
	snap, err := api.Sessions.StartUpgrade(c.Param("id"))
	if err != nil {
		return sessionError("StartUpgrade", err)
	}
	log.Infow("upgrade started", "session", snap.ID, "account", snap.Burner.Address)
	return c.JSON(http.StatusAccepted, api.sessionResponse(snap, false))
}

// handleSessionHistory -> GET /api/sessions/:id/transactions
func (api *API) handleSessionHistory(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := api.Sessions.Get(id); err != nil {
		return sessionError("SessionHistory", err)
	}
	funding, upgrades, err := api.History.History(ctx, id)
	if err != nil {
		return middleware.NewError("SessionHistory", "failed to load history", err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, HistoryResponse{Funding: funding, Upgrades: upgrades})
}

// handleAccountUpgrades -> GET /api/accounts/:address/upgrades
func (api *API) handleAccountUpgrades(c echo.Context) error {
	addr := c.Param("address")
	if !common.IsHexAddress(addr) {
		return middleware.NewError("AccountUpgrades", "invalid address", nil, http.StatusBadRequest)
	}
	upgrades, err := api.History.Upgrades(c.Request().Context(), common.HexToAddress(addr).Hex())
	if err != nil {
		return middleware.NewError("AccountUpgrades", "failed to load upgrades", err, http.StatusInternalServerError)
	}
	if upgrades == nil {
		upgrades = []txstore.UpgradeTx{}
	}
	return c.JSON(http.StatusOK, UpgradesResponse{Account: common.HexToAddress(addr).Hex(), Upgrades: upgrades})
}
