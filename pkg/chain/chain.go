// Package chain is the thin layer over an Ethereum JSON-RPC endpoint used to
// read balances and submit EIP-7702 upgrade transactions.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("chain")

const (
	// SepoliaChainID is the default network.
	SepoliaChainID     = 11155111
	DefaultRPCURL      = "https://ethereum-sepolia-rpc.publicnode.com"
	DefaultExplorerURL = "https://sepolia.etherscan.io"
)

// Client is the subset of ethclient.Client the sandbox needs.
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Client = (*ethclient.Client)(nil)

// Dial connects to the RPC endpoint and checks it serves the expected chain.
// A zero expected chain id accepts any network.
func Dial(ctx context.Context, rpcURL string, expected uint64) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", rpcURL, err)
	}
	if expected == 0 {
		return c, nil
	}
	id, err := c.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("getting chain id: %w", err)
	}
	if !id.IsUint64() || id.Uint64() != expected {
		c.Close()
		return nil, fmt.Errorf("rpc endpoint serves chain %s, expected %d", id, expected)
	}
	log.Debugw("connected to chain", "rpc", rpcURL, "chain_id", id)
	return c, nil
}

// Explorer builds block explorer links.
type Explorer string

func (e Explorer) TxURL(hash common.Hash) string {
	return strings.TrimSuffix(string(e), "/") + "/tx/" + hash.Hex()
}

func (e Explorer) AddressURL(addr common.Address) string {
	return strings.TrimSuffix(string(e), "/") + "/address/" + addr.Hex()
}
