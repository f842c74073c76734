package relayer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultPollInterval matches the cadence the relayer dashboard refreshes at.
const DefaultPollInterval = 5 * time.Second

var (
	ErrPollTimeout       = errors.New("transaction not mined before poll limit was reached")
	ErrTransactionFailed = errors.New("transaction failed")
)

type PollOptions struct {
	// Interval between status queries. Defaults to DefaultPollInterval.
	Interval time.Duration
	// MaxPolls bounds the number of status queries. Zero polls until the
	// transaction is mined, fails or the context is done.
	MaxPolls int
	// OnPoll is invoked with every status the relayer reports.
	OnPoll func(attempt int, tx Transaction)
}

// WaitMined polls the relayer until the transaction reports a mined status.
// The first query is issued immediately.
func WaitMined(ctx context.Context, client Client, relayerID, txID string, opts PollOptions) (Transaction, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return Transaction{}, ctx.Err()
		case <-timer.C:
		}

		res, err := client.GetTransaction(ctx, relayerID, txID)
		if err != nil {
			return Transaction{}, fmt.Errorf("getting transaction %s: %w", txID, err)
		}
		if err := res.Err(); err != nil {
			return Transaction{}, fmt.Errorf("getting transaction %s: %w", txID, err)
		}

		tx := res.Data
		log.Debugw("polled transaction", "relayer", relayerID, "id", txID, "status", tx.Status, "attempt", attempt)
		if opts.OnPoll != nil {
			opts.OnPoll(attempt, tx)
		}

		if tx.Mined() {
			log.Infow("transaction mined", "relayer", relayerID, "id", txID, "hash", tx.Hash, "polls", attempt)
			return tx, nil
		}
		if tx.Failed() {
			return tx, fmt.Errorf("%w: relayer transaction %s is %s", ErrTransactionFailed, txID, tx.Status)
		}
		if opts.MaxPolls > 0 && attempt >= opts.MaxPolls {
			return tx, fmt.Errorf("%w: last status %q after %d polls", ErrPollTimeout, tx.Status, attempt)
		}

		timer.Reset(interval)
	}
}
