package server

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/server/middleware"
)

// relayerError maps relayer client failures onto gateway errors. The upstream
// body is logged, not returned.
func relayerError(operation string, err error) error {
	code := http.StatusBadGateway
	var failed relayer.ErrFailedResponse
	if errors.As(err, &failed) {
		if failed.StatusCode == http.StatusNotFound {
			code = http.StatusNotFound
		}
		return middleware.NewError(operation, "relayer request failed", err, code).
			WithContext("upstream_status", failed.StatusCode)
	}
	return middleware.NewError(operation, "relayer request failed", err, code)
}

// handleListRelayers -> GET /api/relayers
func (api *API) handleListRelayers(c echo.Context) error {
	res, err := api.Relayer.ListRelayers(c.Request().Context())
	if err != nil {
		return relayerError("ListRelayers", err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleRelayerBalance -> GET /api/relayers/:id/balance
func (api *API) handleRelayerBalance(c echo.Context) error {
	res, err := api.Relayer.GetBalance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return relayerError("RelayerBalance", err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleRelayerTransaction -> GET /api/relayers/:id/transactions/:txId
func (api *API) handleRelayerTransaction(c echo.Context) error {
	res, err := api.Relayer.GetTransaction(c.Request().Context(), c.Param("id"), c.Param("txId"))
	if err != nil {
		return relayerError("RelayerTransaction", err)
	}
	return c.JSON(http.StatusOK, res)
}

type BalanceResponse struct {
	Address string `json:"address"`
	Wei     string `json:"wei"`
	Ether   string `json:"ether"`
}

// handleBalance -> GET /api/balance/:address
func (api *API) handleBalance(c echo.Context) error {
	addr := c.Param("address")
	if !common.IsHexAddress(addr) {
		return middleware.NewError("Balance", "invalid address", nil, http.StatusBadRequest)
	}
	bal, err := chain.BalanceOf(c.Request().Context(), api.Chain, common.HexToAddress(addr))
	if err != nil {
		return middleware.NewError("Balance", "failed to fetch balance", err, http.StatusBadGateway)
	}
	return c.JSON(http.StatusOK, BalanceResponse{
		Address: bal.Address.Hex(),
		Wei:     bal.Wei.String(),
		Ether:   bal.Ether,
	})
}
