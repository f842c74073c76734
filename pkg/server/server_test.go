package server_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/storacha/sandbox/internal/mocks"
	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/server"
	"github.com/storacha/sandbox/pkg/server/middleware"
	"github.com/storacha/sandbox/pkg/session"
	"github.com/storacha/sandbox/pkg/store/txstore"
	"github.com/storacha/sandbox/pkg/upgrade"
)

type gatedUpgrader struct {
	release chan struct{}
}

func (u *gatedUpgrader) Execute(ctx context.Context, req upgrade.Request) (upgrade.Result, error) {
	select {
	case <-u.release:
	case <-ctx.Done():
		req.Tracker.Fail(ctx.Err())
		return upgrade.Result{}, ctx.Err()
	}
	req.Tracker.Set(upgrade.StatusDone)
	return upgrade.Result{Hash: common.HexToHash("0x01")}, nil
}

type fixture struct {
	handler  http.Handler
	relayer  *mocks.MockRelayerClient
	chain    *mocks.MockChainClient
	sessions *session.Manager
	upgrader *gatedUpgrader
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	u := &gatedUpgrader{release: make(chan struct{})}
	f := &fixture{
		relayer:  mocks.NewMockRelayerClient(ctrl),
		chain:    mocks.NewMockChainClient(ctrl),
		sessions: session.NewManager(context.Background(), u),
		upgrader: u,
	}
	f.handler = server.NewServer(&server.API{
		Sessions: f.sessions,
		Relayer:  f.relayer,
		Chain:    f.chain,
		Explorer: chain.DefaultExplorerURL,
	}).Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[server.HealthResponse](t, rec).Status)
}

func TestSessionFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[server.SessionResponse](t, rec)
	require.NotEmpty(t, created.PrivateKey)
	require.True(t, common.IsHexAddress(created.Address))
	require.Equal(t, "burner", created.Step)
	require.Equal(t, 1, created.Progress)
	require.Equal(t, chain.DefaultExplorerURL+"/address/"+created.Address, created.AddressURL)

	base := "/api/sessions/" + created.ID

	rec = f.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[server.SessionResponse](t, rec)
	require.Empty(t, got.PrivateKey)
	require.Equal(t, created.Address, got.Address)

	rec = f.do(t, http.MethodPost, base+"/upgrade", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 33, decode[server.SessionResponse](t, rec).Progress)

	rec = f.do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "account", decode[server.SessionResponse](t, rec).Step)

	rec = f.do(t, http.MethodPut, base+"/target", `{"address":"nope","abi":"[]"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, decode[middleware.ErrorResponse](t, rec).Error)

	rec = f.do(t, http.MethodPost, base+"/upgrade", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "funding", decode[server.SessionResponse](t, rec).Status)

	rec = f.do(t, http.MethodPost, base+"/upgrade", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	close(f.upgrader.release)
	f.sessions.Wait()

	rec = f.do(t, http.MethodGet, base, "")
	done := decode[server.SessionResponse](t, rec)
	require.Equal(t, "done", done.Status)
	require.Equal(t, "done", done.Step)
	require.Equal(t, 100, done.Progress)
	require.Equal(t, common.HexToHash("0x01").Hex(), done.TxHash)
	require.Equal(t, chain.DefaultExplorerURL+"/tx/"+done.TxHash, done.ExplorerURL)

	rec = f.do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateBurner(t *testing.T) {
	f := newFixture(t)
	created := decode[server.SessionResponse](t, f.do(t, http.MethodPost, "/api/sessions", ""))

	rec := f.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/burner", "")
	require.Equal(t, http.StatusOK, rec.Code)
	regen := decode[server.SessionResponse](t, rec)
	require.NotEqual(t, created.Address, regen.Address)
	require.NotEmpty(t, regen.PrivateKey)

	rec = f.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/back", "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRelayerProxy(t *testing.T) {
	f := newFixture(t)

	f.relayer.EXPECT().ListRelayers(gomock.Any()).Return(relayer.ListRelayersResponse{
		Envelope: relayer.Envelope{Success: true},
		Data:     []relayer.Relayer{{ID: "relayer-1", Network: "sepolia"}},
	}, nil)
	rec := f.do(t, http.MethodGet, "/api/relayers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[relayer.ListRelayersResponse](t, rec)
	require.Equal(t, "relayer-1", list.Data[0].ID)

	f.relayer.EXPECT().GetTransaction(gomock.Any(), "relayer-1", "missing").
		Return(relayer.TransactionResponse{}, relayer.ErrFailedResponse{StatusCode: http.StatusNotFound, Body: "not found"})
	rec = f.do(t, http.MethodGet, "/api/relayers/relayer-1/transactions/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	f.relayer.EXPECT().GetBalance(gomock.Any(), "relayer-1").
		Return(relayer.BalanceResponse{}, relayer.ErrFailedResponse{StatusCode: http.StatusUnauthorized, Body: "bad key"})
	rec = f.do(t, http.MethodGet, "/api/relayers/relayer-1/balance", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotContains(t, rec.Body.String(), "bad key")
}

func TestBalance(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/balance/not-an-address", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	f.chain.EXPECT().BalanceAt(gomock.Any(), addr, nil).Return(big.NewInt(1_500_000_000_000_000_000), nil)
	rec = f.do(t, http.MethodGet, "/api/balance/"+addr.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[server.BalanceResponse](t, rec)
	require.Equal(t, "1.5", bal.Ether)
	require.Equal(t, "1500000000000000000", bal.Wei)
}

func TestRelayerOnlyServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := server.NewServer(&server.API{Relayer: mocks.NewMockRelayerClient(ctrl)}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

type staticHistory struct {
	upgrades []txstore.UpgradeTx
	accounts []string
}

func (h *staticHistory) History(ctx context.Context, sessionID string) ([]txstore.FundingTx, []txstore.UpgradeTx, error) {
	var out []txstore.UpgradeTx
	for _, u := range h.upgrades {
		if u.SessionID == sessionID {
			out = append(out, u)
		}
	}
	return nil, out, nil
}

func (h *staticHistory) Upgrades(ctx context.Context, account string) ([]txstore.UpgradeTx, error) {
	h.accounts = append(h.accounts, account)
	var out []txstore.UpgradeTx
	for _, u := range h.upgrades {
		if u.Account == account {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestAccountUpgrades(t *testing.T) {
	account := common.HexToAddress("0x00000000000000000000000000000000000000aB")
	history := &staticHistory{upgrades: []txstore.UpgradeTx{
		{ID: 1, SessionID: "s1", Account: account.Hex(), Delegate: "0x01", Hash: "0xaa"},
		{ID: 2, SessionID: "s2", Account: common.HexToAddress("0x01").Hex(), Delegate: "0x01", Hash: "0xbb"},
	}}
	h := server.NewServer(&server.API{History: history}).Handler()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/api/accounts/nope/upgrades")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// lookups are by checksummed address whatever the caller sends
	rec = get("/api/accounts/" + strings.ToLower(account.Hex()) + "/upgrades")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[server.UpgradesResponse](t, rec)
	require.Equal(t, account.Hex(), resp.Account)
	require.Len(t, resp.Upgrades, 1)
	require.Equal(t, "0xaa", resp.Upgrades[0].Hash)
	require.Equal(t, []string{account.Hex()}, history.accounts)

	rec = get("/api/accounts/" + common.HexToAddress("0x02").Hex() + "/upgrades")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[server.UpgradesResponse](t, rec).Upgrades)
	require.Contains(t, rec.Body.String(), `"upgrades":[]`)
}
