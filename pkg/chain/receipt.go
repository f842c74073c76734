package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const DefaultReceiptInterval = 3 * time.Second

var ErrReverted = errors.New("transaction reverted")

// WaitReceipt polls for the receipt of hash until it is available or ctx is
// done. A receipt with a failed status is returned along with ErrReverted.
func WaitReceipt(ctx context.Context, client Client, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	if interval <= 0 {
		interval = DefaultReceiptInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: %s", ErrReverted, hash)
			}
			log.Infow("transaction included", "hash", hash, "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			// still pending
		default:
			return nil, fmt.Errorf("failed to get transaction receipt for hash %s: %w", hash, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
