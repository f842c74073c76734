package relayer_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storacha/sandbox/pkg/relayer"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

func newTestRelayer(t *testing.T, status int, response string) (*relayer.HTTPClient, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	endpoint, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return relayer.New(srv.Client(), endpoint, "secret-key"), &requests
}

func TestListRelayers(t *testing.T) {
	c, reqs := newTestRelayer(t, http.StatusOK, `{
		"success": true,
		"data": [
			{"id": "sepolia-example", "name": "Sepolia Example", "address": "0x1111111111111111111111111111111111111111", "network": "sepolia", "network_type": "evm", "paused": false, "system_disabled": false, "policies": {}}
		],
		"pagination": {"current_page": 1, "per_page": 10, "total_items": 1}
	}`)

	res, err := c.ListRelayers(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Data, 1)
	require.Equal(t, "sepolia-example", res.Data[0].ID)
	require.True(t, res.Data[0].Available())
	require.NotNil(t, res.Pagination)
	require.Equal(t, 1, res.Pagination.TotalItems)

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	require.Equal(t, http.MethodGet, req.Method)
	require.Equal(t, "/api/v1/relayers", req.Path)
	require.Equal(t, "Bearer secret-key", req.Auth)
}

func TestListRelayersMixedPolicies(t *testing.T) {
	c, _ := newTestRelayer(t, http.StatusOK, `{
		"success": true,
		"data": [
			{"id": "sepolia-example", "paused": false, "policies": {"eip1559_pricing": true, "min_balance": 100000000000000000, "whitelist_receivers": ["0x2222222222222222222222222222222222222222"], "gas_price_cap": "100000000000"}}
		]
	}`)

	res, err := c.ListRelayers(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	policies := res.Data[0].Policies
	require.Equal(t, true, policies["eip1559_pricing"])
	require.Equal(t, float64(100000000000000000), policies["min_balance"])
	require.Equal(t, "100000000000", policies["gas_price_cap"])
	require.Len(t, policies["whitelist_receivers"], 1)
}

func TestGetBalance(t *testing.T) {
	c, reqs := newTestRelayer(t, http.StatusOK, `{"success": true, "data": {"balance": 1000000000000000000, "unit": "wei"}}`)

	res, err := c.GetBalance(context.Background(), "sepolia-example")
	require.NoError(t, err)
	require.Equal(t, float64(1e18), res.Data.Balance)
	require.Equal(t, "wei", res.Data.Unit)
	require.Equal(t, "/api/v1/relayers/sepolia-example/balance", (*reqs)[0].Path)
}

func TestSendTransaction(t *testing.T) {
	c, reqs := newTestRelayer(t, http.StatusOK, `{"success": true, "data": {"id": "tx-1", "status": "pending", "relayer_id": "sepolia-example"}}`)

	req := relayer.TransactionRequest{
		Value:    10_000_000_000_000,
		To:       "0x2222222222222222222222222222222222222222",
		Data:     "0x",
		GasLimit: 21000,
		Speed:    relayer.SpeedFastest,
	}
	res, err := c.SendTransaction(context.Background(), "sepolia-example", req)
	require.NoError(t, err)
	require.Equal(t, "tx-1", res.Data.ID)
	require.Equal(t, relayer.StatusPending, res.Data.Status)

	sent := (*reqs)[0]
	require.Equal(t, http.MethodPost, sent.Method)
	require.Equal(t, "/api/v1/relayers/sepolia-example/transactions", sent.Path)
	require.Equal(t, "Bearer secret-key", sent.Auth)

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.Body, &body))
	require.Equal(t, map[string]any{
		"value":     float64(10_000_000_000_000),
		"to":        "0x2222222222222222222222222222222222222222",
		"data":      "0x",
		"gas_limit": float64(21000),
		"speed":     "fastest",
	}, body)
}

func TestGetTransaction(t *testing.T) {
	c, reqs := newTestRelayer(t, http.StatusOK, `{"success": true, "data": {"id": "tx-1", "hash": "0xabc", "status": "mined"}}`)

	res, err := c.GetTransaction(context.Background(), "sepolia-example", "tx-1")
	require.NoError(t, err)
	require.True(t, res.Data.Mined())
	require.Equal(t, "/api/v1/relayers/sepolia-example/transactions/tx-1", (*reqs)[0].Path)
}

func TestUnsuccessfulEnvelope(t *testing.T) {
	c, _ := newTestRelayer(t, http.StatusOK, `{"success": false, "error": "insufficient balance", "data": {}}`)

	res, err := c.SendTransaction(context.Background(), "sepolia-example", relayer.TransactionRequest{})
	require.NoError(t, err)
	require.False(t, res.Success)

	var unsuccessful relayer.ErrUnsuccessful
	require.ErrorAs(t, res.Err(), &unsuccessful)
	require.Equal(t, "insufficient balance", unsuccessful.Message)
}

func TestFailedResponse(t *testing.T) {
	c, _ := newTestRelayer(t, http.StatusUnauthorized, `{"success": false, "error": "unauthorized"}`)

	_, err := c.ListRelayers(context.Background())
	require.Error(t, err)

	var failed relayer.ErrFailedResponse
	require.ErrorAs(t, err, &failed)
	require.Equal(t, http.StatusUnauthorized, failed.StatusCode)
	require.Contains(t, failed.Body, "unauthorized")
}

func TestParseSpeed(t *testing.T) {
	for _, s := range []string{"average", "fast", "fastest"} {
		sp, err := relayer.ParseSpeed(s)
		require.NoError(t, err)
		require.Equal(t, relayer.Speed(s), sp)
	}
	_, err := relayer.ParseSpeed("ludicrous")
	require.Error(t, err)
}
