// Package upgrade runs the full account upgrade: authorize the delegate, fund
// the account through a relayer, then submit the SetCode transaction.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/sandbox/pkg/burner"
	"github.com/storacha/sandbox/pkg/chain"
	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/relayer"
)

var log = logging.Logger("upgrade")

var ErrUpgradeInProgress = errors.New("upgrade already in progress")

// Funder tops up an account before it pays for its own upgrade.
type Funder interface {
	Fund(ctx context.Context, sessionID string, to common.Address) (relayer.Transaction, error)
}

// Sender signs and submits the SetCode transaction.
type Sender interface {
	ChainID() *big.Int
	Authorize(ctx context.Context, account, delegate common.Address) (types.SetCodeAuthorization, error)
	UpgradeTx(ctx context.Context, account common.Address, auth types.SetCodeAuthorization, data []byte) (*types.Transaction, error)
	Send(ctx context.Context, account common.Address, tx *types.Transaction) (common.Hash, error)
}

// KeyImporter makes a burner key available to the Sender.
type KeyImporter interface {
	ImportCredential(ctx context.Context, cred burner.Credential) (common.Address, error)
}

// Journal records submitted upgrade transactions.
type Journal interface {
	RecordUpgrade(ctx context.Context, sessionID string, res Result) error
}

type Request struct {
	SessionID  string
	Credential burner.Credential
	Target     delegate.Target
	// Tracker receives status transitions. Optional.
	Tracker *Tracker
}

type Result struct {
	Account     common.Address      `json:"account"`
	Delegate    common.Address      `json:"delegate"`
	ChainID     uint64              `json:"chainId"`
	Funding     relayer.Transaction `json:"funding"`
	Hash        common.Hash         `json:"hash"`
	ExplorerURL string              `json:"explorerUrl,omitempty"`
	Receipt     *types.Receipt      `json:"receipt,omitempty"`
}

type Service struct {
	funder      Funder
	sender      Sender
	keys        KeyImporter
	chain       chain.Client
	explorer    chain.Explorer
	journal     Journal
	waitReceipt bool
	receiptPoll time.Duration
}

type Option func(*Service)

func WithExplorer(e chain.Explorer) Option {
	return func(s *Service) { s.explorer = e }
}

func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithReceiptWait makes Upgrade block until the transaction is included.
func WithReceiptWait(client chain.Client, interval time.Duration) Option {
	return func(s *Service) {
		s.waitReceipt = true
		s.chain = client
		s.receiptPoll = interval
	}
}

func NewService(funder Funder, sender Sender, keys KeyImporter, opts ...Option) *Service {
	s := &Service{
		funder: funder,
		sender: sender,
		keys:   keys,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upgrade executes the upgrade for the request's burner account. It fails
// with ErrUpgradeInProgress when the tracker reports one in flight.
func (s *Service) Upgrade(ctx context.Context, req Request) (Result, error) {
	if req.Tracker == nil {
		req.Tracker = &Tracker{}
	}
	if !req.Tracker.TryStart() {
		return Result{}, ErrUpgradeInProgress
	}
	return s.Execute(ctx, req)
}

// Execute runs an upgrade whose tracker was already moved to StatusFunding
// with TryStart. Failures leave the tracker in StatusError with the cause
// retained.
func (s *Service) Execute(ctx context.Context, req Request) (Result, error) {
	tracker := req.Tracker
	if tracker == nil {
		tracker = &Tracker{}
		tracker.Set(StatusFunding)
	}

	res, err := s.upgrade(ctx, req, tracker)
	if err != nil {
		log.Errorw("upgrade failed", "session", req.SessionID, "account", req.Credential.Address, "error", err)
		tracker.Fail(err)
		return res, err
	}
	tracker.Set(StatusDone)
	return res, nil
}

func (s *Service) upgrade(ctx context.Context, req Request, tracker *Tracker) (Result, error) {
	contract, err := req.Target.Contract()
	if err != nil {
		return Result{}, err
	}
	calldata, err := req.Target.InitializeCalldata()
	if err != nil {
		return Result{}, err
	}

	account, err := s.keys.ImportCredential(ctx, req.Credential)
	if err != nil {
		return Result{}, fmt.Errorf("importing burner key: %w", err)
	}
	res := Result{Account: account, Delegate: contract, ChainID: s.sender.ChainID().Uint64()}

	auth, err := s.sender.Authorize(ctx, account, contract)
	if err != nil {
		return res, fmt.Errorf("signing authorization: %w", err)
	}

	log.Infow("funding account", "session", req.SessionID, "account", account)
	res.Funding, err = s.funder.Fund(ctx, req.SessionID, account)
	if err != nil {
		return res, fmt.Errorf("funding account: %w", err)
	}

	tracker.Set(StatusSubmitting)
	tx, err := s.sender.UpgradeTx(ctx, account, auth, calldata)
	if err != nil {
		return res, fmt.Errorf("building upgrade transaction: %w", err)
	}
	res.Hash, err = s.sender.Send(ctx, account, tx)
	if err != nil {
		return res, err
	}
	if s.explorer != "" {
		res.ExplorerURL = s.explorer.TxURL(res.Hash)
	}
	log.Infow("upgrade submitted", "session", req.SessionID, "account", account, "delegate", contract, "hash", res.Hash)

	if s.journal != nil {
		if err := s.journal.RecordUpgrade(context.WithoutCancel(ctx), req.SessionID, res); err != nil {
			log.Warnw("recording upgrade transaction", "hash", res.Hash, "error", err)
		}
	}

	if s.waitReceipt {
		res.Receipt, err = chain.WaitReceipt(ctx, s.chain, res.Hash, s.receiptPoll)
		if err != nil {
			return res, fmt.Errorf("waiting for upgrade transaction: %w", err)
		}
	}
	return res, nil
}
