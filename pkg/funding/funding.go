// Package funding tops up burner accounts through a relayer and waits for the
// transfer to be mined.
package funding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/sandbox/pkg/relayer"
)

var log = logging.Logger("funding")

const (
	// DefaultValueWei covers the gas of a self upgrade on a test network.
	DefaultValueWei uint64 = 10_000_000_000_000
	// TransferGasLimit is the intrinsic gas of a plain value transfer.
	TransferGasLimit uint64 = 21000
	EmptyData               = "0x"
	// DefaultTimeout bounds the whole funding sequence.
	DefaultTimeout          = 10 * time.Minute
)

var ErrNoRelayer = errors.New("no available relayer")

// Journal records funding submissions and their final status.
type Journal interface {
	RecordFunding(ctx context.Context, sessionID string, relayerID string, req relayer.TransactionRequest, tx relayer.Transaction) error
	// UpdateFunding stores the outcome of polling. cause is the polling
	// error, nil once the transfer is mined.
	UpdateFunding(ctx context.Context, relayerTxID string, tx relayer.Transaction, polls int, cause error) error
}

type Funder struct {
	client       relayer.Client
	relayerID    string
	valueWei     uint64
	gasLimit     uint64
	speed        relayer.Speed
	pollInterval time.Duration
	maxPolls     int
	timeout      time.Duration
	journal      Journal
	onPoll       func(attempt int, tx relayer.Transaction)
}

func New(client relayer.Client, opts ...Option) *Funder {
	f := &Funder{
		client:       client,
		valueWei:     DefaultValueWei,
		gasLimit:     TransferGasLimit,
		speed:        relayer.SpeedFastest,
		pollInterval: relayer.DefaultPollInterval,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Request builds the transfer sent to the relayer for the given address.
func (f *Funder) Request(to common.Address) relayer.TransactionRequest {
	return relayer.TransactionRequest{
		Value:    f.valueWei,
		To:       to.Hex(),
		Data:     EmptyData,
		GasLimit: f.gasLimit,
		Speed:    f.speed,
	}
}

// PickRelayer returns the configured relayer, or the first available one
// reported by the relayer API.
func (f *Funder) PickRelayer(ctx context.Context) (string, error) {
	if f.relayerID != "" {
		return f.relayerID, nil
	}
	res, err := f.client.ListRelayers(ctx)
	if err != nil {
		return "", fmt.Errorf("listing relayers: %w", err)
	}
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("listing relayers: %w", err)
	}
	for _, r := range res.Data {
		if r.Available() {
			return r.ID, nil
		}
		log.Debugw("skipping unavailable relayer", "relayer", r.ID, "paused", r.Paused, "system_disabled", r.SystemDisabled)
	}
	return "", ErrNoRelayer
}

// Fund sends the configured amount to the address and blocks until the
// relayer reports the transfer as mined.
func (f *Funder) Fund(ctx context.Context, sessionID string, to common.Address) (relayer.Transaction, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	relayerID, err := f.PickRelayer(ctx)
	if err != nil {
		return relayer.Transaction{}, err
	}

	req := f.Request(to)
	log.Infow("funding account", "relayer", relayerID, "to", req.To, "value", req.Value)

	res, err := f.client.SendTransaction(ctx, relayerID, req)
	if err != nil {
		return relayer.Transaction{}, fmt.Errorf("sending funding transaction: %w", err)
	}
	if err := res.Err(); err != nil {
		return relayer.Transaction{}, fmt.Errorf("sending funding transaction: %w", err)
	}
	if res.Data.ID == "" {
		return relayer.Transaction{}, relayer.ErrEmptyTransactionID
	}
	log.Infow("funding transaction sent", "relayer", relayerID, "id", res.Data.ID)

	if f.journal != nil {
		if err := f.journal.RecordFunding(ctx, sessionID, relayerID, req, res.Data); err != nil {
			log.Warnw("recording funding transaction", "id", res.Data.ID, "error", err)
		}
	}

	polls := 0
	tx, err := relayer.WaitMined(ctx, f.client, relayerID, res.Data.ID, relayer.PollOptions{
		Interval: f.pollInterval,
		MaxPolls: f.maxPolls,
		OnPoll: func(attempt int, tx relayer.Transaction) {
			polls = attempt
			if f.onPoll != nil {
				f.onPoll(attempt, tx)
			}
		},
	})

	if f.journal != nil {
		// the request context may already be done
		if jerr := f.journal.UpdateFunding(context.WithoutCancel(ctx), res.Data.ID, tx, polls, err); jerr != nil {
			log.Warnw("updating funding transaction", "id", res.Data.ID, "error", jerr)
		}
	}
	if err != nil {
		return tx, fmt.Errorf("waiting for funding transaction %s: %w", res.Data.ID, err)
	}
	return tx, nil
}
