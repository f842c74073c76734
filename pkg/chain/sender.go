package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/storacha/sandbox/pkg/wallet"
)

// DefaultUpgradeGasLimit covers the delegation plus a trivial initialize call.
const DefaultUpgradeGasLimit uint64 = 200_000

var ErrNoBaseFee = errors.New("base fee not available; network might not support EIP-1559")

// Sender builds, signs and submits SetCode transactions on behalf of keys
// held in a wallet.
type Sender struct {
	client   Client
	wallet   wallet.Wallet
	chainID  *big.Int
	gasLimit uint64
}

func NewSender(client Client, w wallet.Wallet, chainID uint64, gasLimit uint64) *Sender {
	if gasLimit == 0 {
		gasLimit = DefaultUpgradeGasLimit
	}
	return &Sender{
		client:   client,
		wallet:   w,
		chainID:  new(big.Int).SetUint64(chainID),
		gasLimit: gasLimit,
	}
}

func (s *Sender) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// Authorize signs an authorization delegating account to the delegate
// contract. The account sends the upgrade itself, which consumes its
// current nonce first, so the authorization carries the next one.
func (s *Sender) Authorize(ctx context.Context, account, delegate common.Address) (types.SetCodeAuthorization, error) {
	nonce, err := s.client.PendingNonceAt(ctx, account)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("getting nonce of %s: %w", account, err)
	}
	auth := types.SetCodeAuthorization{
		ChainID: *uint256.MustFromBig(s.chainID),
		Address: delegate,
		Nonce:   nonce + 1,
	}
	signed, err := s.wallet.SignAuthorization(ctx, account, auth)
	if err != nil {
		return types.SetCodeAuthorization{}, err
	}
	log.Debugw("signed authorization", "account", account, "delegate", delegate, "nonce", auth.Nonce)
	return signed, nil
}

// fees returns the tip and fee caps: suggested tip on top of the latest base fee.
func (s *Sender) fees(ctx context.Context) (*big.Int, *big.Int, error) {
	header, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get latest block header: %w", err)
	}
	if header.BaseFee == nil {
		return nil, nil, ErrNoBaseFee
	}
	gasTipCap, err := s.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("estimating gas premium: %w", err)
	}
	gasFeeCap := new(big.Int).Add(header.BaseFee, gasTipCap)
	return gasTipCap, gasFeeCap, nil
}

// UpgradeTx builds the unsigned SetCode transaction the account sends to
// itself, carrying the authorization and the given calldata.
func (s *Sender) UpgradeTx(ctx context.Context, account common.Address, auth types.SetCodeAuthorization, data []byte) (*types.Transaction, error) {
	nonce, err := s.client.PendingNonceAt(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("getting nonce of %s: %w", account, err)
	}
	gasTipCap, gasFeeCap, err := s.fees(ctx)
	if err != nil {
		return nil, err
	}
	tip, overflow := uint256.FromBig(gasTipCap)
	if overflow {
		return nil, fmt.Errorf("gas tip cap overflows: %s", gasTipCap)
	}
	feeCap, overflow := uint256.FromBig(gasFeeCap)
	if overflow {
		return nil, fmt.Errorf("gas fee cap overflows: %s", gasFeeCap)
	}

	return types.NewTx(&types.SetCodeTx{
		ChainID:   uint256.MustFromBig(s.chainID),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       s.gasLimit,
		To:        account,
		Value:     uint256.NewInt(0),
		Data:      data,
		AuthList:  []types.SetCodeAuthorization{auth},
	}), nil
}

// Send signs tx with the account key and submits it.
func (s *Sender) Send(ctx context.Context, account common.Address, tx *types.Transaction) (common.Hash, error) {
	signer := types.LatestSignerForChainID(s.chainID)
	signed, err := s.wallet.SignTransaction(ctx, account, signer, tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("sending transaction: %w", err)
	}
	log.Infow("sent transaction", "hash", signed.Hash(), "from", account, "nonce", signed.Nonce(), "type", signed.Type())
	return signed.Hash(), nil
}
