package funding_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/storacha/sandbox/internal/mocks"
	"github.com/storacha/sandbox/pkg/funding"
	"github.com/storacha/sandbox/pkg/relayer"
)

var target = common.HexToAddress("0x2222222222222222222222222222222222222222")

func relayers(rs ...relayer.Relayer) relayer.ListRelayersResponse {
	return relayer.ListRelayersResponse{Envelope: relayer.Envelope{Success: true}, Data: rs}
}

func txResponse(id, status string) relayer.TransactionResponse {
	return relayer.TransactionResponse{
		Envelope: relayer.Envelope{Success: true},
		Data:     relayer.Transaction{ID: id, Status: status},
	}
}

type journalEntry struct {
	sessionID string
	relayerID string
	req       relayer.TransactionRequest
	status    string
	polls     int
	err       error
}

type memJournal struct {
	entries map[string]*journalEntry
}

func (m *memJournal) RecordFunding(_ context.Context, sessionID, relayerID string, req relayer.TransactionRequest, tx relayer.Transaction) error {
	m.entries[tx.ID] = &journalEntry{sessionID: sessionID, relayerID: relayerID, req: req, status: tx.Status}
	return nil
}

func (m *memJournal) UpdateFunding(_ context.Context, id string, tx relayer.Transaction, polls int, cause error) error {
	if tx.Status != "" {
		m.entries[id].status = tx.Status
	}
	m.entries[id].polls = polls
	m.entries[id].err = cause
	return nil
}

func TestRequestShape(t *testing.T) {
	f := funding.New(nil)
	req := f.Request(target)
	require.Equal(t, relayer.TransactionRequest{
		Value:    funding.DefaultValueWei,
		To:       target.Hex(),
		Data:     "0x",
		GasLimit: 21000,
		Speed:    relayer.SpeedFastest,
	}, req)

	f = funding.New(nil, funding.WithValueWei(42), funding.WithSpeed(relayer.SpeedAverage))
	req = f.Request(target)
	require.Equal(t, uint64(42), req.Value)
	require.Equal(t, relayer.SpeedAverage, req.Speed)
	require.Equal(t, uint64(21000), req.GasLimit)
}

func TestFund(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRelayerClient(ctrl)
	journal := &memJournal{entries: map[string]*journalEntry{}}

	f := funding.New(client, funding.WithPollInterval(time.Millisecond), funding.WithJournal(journal))

	client.EXPECT().ListRelayers(gomock.Any()).Return(relayers(
		relayer.Relayer{ID: "paused", Paused: true},
		relayer.Relayer{ID: "disabled", SystemDisabled: true},
		relayer.Relayer{ID: "sepolia-example"},
	), nil)
	client.EXPECT().SendTransaction(gomock.Any(), "sepolia-example", f.Request(target)).Return(txResponse("tx-1", relayer.StatusPending), nil)
	gomock.InOrder(
		client.EXPECT().GetTransaction(gomock.Any(), "sepolia-example", "tx-1").Return(txResponse("tx-1", relayer.StatusSubmitted), nil),
		client.EXPECT().GetTransaction(gomock.Any(), "sepolia-example", "tx-1").Return(txResponse("tx-1", relayer.StatusMined), nil),
	)

	tx, err := f.Fund(ctx, "session-1", target)
	require.NoError(t, err)
	require.Equal(t, relayer.StatusMined, tx.Status)

	entry := journal.entries["tx-1"]
	require.NotNil(t, entry)
	require.Equal(t, "session-1", entry.sessionID)
	require.Equal(t, "sepolia-example", entry.relayerID)
	require.Equal(t, relayer.StatusMined, entry.status)
	require.Equal(t, 2, entry.polls)
}

func TestFund_JournalsFirstPollFailure(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRelayerClient(ctrl)
	journal := &memJournal{entries: map[string]*journalEntry{}}

	f := funding.New(client,
		funding.WithRelayerID("pinned"),
		funding.WithPollInterval(time.Millisecond),
		funding.WithJournal(journal),
	)

	boom := errors.New("relayer unreachable")
	client.EXPECT().SendTransaction(gomock.Any(), "pinned", gomock.Any()).Return(txResponse("tx-1", relayer.StatusPending), nil)
	client.EXPECT().GetTransaction(gomock.Any(), "pinned", "tx-1").Return(relayer.TransactionResponse{}, boom)

	_, err := f.Fund(context.Background(), "session-1", target)
	require.ErrorIs(t, err, boom)

	entry := journal.entries["tx-1"]
	require.NotNil(t, entry)
	require.Zero(t, entry.polls)
	require.ErrorIs(t, entry.err, boom)
}

func TestFund_PinnedRelayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRelayerClient(ctrl)

	f := funding.New(client, funding.WithRelayerID("pinned"), funding.WithPollInterval(time.Millisecond))

	client.EXPECT().SendTransaction(gomock.Any(), "pinned", gomock.Any()).Return(txResponse("tx-1", relayer.StatusPending), nil)
	client.EXPECT().GetTransaction(gomock.Any(), "pinned", "tx-1").Return(txResponse("tx-1", relayer.StatusMined), nil)

	_, err := f.Fund(ctx, "", target)
	require.NoError(t, err)
}

func TestFund_NoRelayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRelayerClient(ctrl)

	client.EXPECT().ListRelayers(gomock.Any()).Return(relayers(relayer.Relayer{ID: "paused", Paused: true}), nil)

	_, err := funding.New(client).Fund(ctx, "", target)
	require.ErrorIs(t, err, funding.ErrNoRelayer)
}

func TestFund_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRelayerClient(ctrl)

	client.EXPECT().SendTransaction(gomock.Any(), "pinned", gomock.Any()).Return(relayer.TransactionResponse{
		Envelope: relayer.Envelope{Success: false, Error: "insufficient funds"},
	}, nil)

	_, err := funding.New(client, funding.WithRelayerID("pinned")).Fund(ctx, "", target)
	var unsuccessful relayer.ErrUnsuccessful
	require.ErrorAs(t, err, &unsuccessful)
	require.Equal(t, "insufficient funds", unsuccessful.Message)
}

func TestFund_EmptyID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRelayerClient(ctrl)

	client.EXPECT().SendTransaction(gomock.Any(), "pinned", gomock.Any()).Return(txResponse("", relayer.StatusPending), nil)

	_, err := funding.New(client, funding.WithRelayerID("pinned")).Fund(ctx, "", target)
	require.ErrorIs(t, err, relayer.ErrEmptyTransactionID)
}

func TestFund_Timeout(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRelayerClient(ctrl)

	f := funding.New(client,
		funding.WithRelayerID("pinned"),
		funding.WithPollInterval(10*time.Millisecond),
		funding.WithTimeout(50*time.Millisecond),
	)

	client.EXPECT().SendTransaction(gomock.Any(), "pinned", gomock.Any()).Return(txResponse("tx-1", relayer.StatusPending), nil)
	client.EXPECT().GetTransaction(gomock.Any(), "pinned", "tx-1").Return(txResponse("tx-1", relayer.StatusPending), nil).MinTimes(1)

	_, err := f.Fund(context.Background(), "", target)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
