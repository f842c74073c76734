// Package txstore journals relayer funding transfers and upgrade
// transactions so a session's history can be inspected after the fact.
package txstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storacha/sandbox/pkg/funding"
	"github.com/storacha/sandbox/pkg/relayer"
	"github.com/storacha/sandbox/pkg/upgrade"
)

var (
	_ funding.Journal = (*Store)(nil)
	_ upgrade.Journal = (*Store)(nil)
)

type Store struct {
	db *gorm.DB
}

// New migrates the journal tables and returns the store.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&FundingTx{}, &UpgradeTx{}); err != nil {
		return nil, fmt.Errorf("migrating journal tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) RecordFunding(ctx context.Context, sessionID string, relayerID string, req relayer.TransactionRequest, tx relayer.Transaction) error {
	row := FundingTx{
		SessionID:   sessionID,
		RelayerID:   relayerID,
		RelayerTxID: tx.ID,
		To:          req.To,
		ValueWei:    req.Value,
		Speed:       string(req.Speed),
		Status:      string(tx.Status),
		Hash:        tx.Hash,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("recording funding transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (s *Store) UpdateFunding(ctx context.Context, relayerTxID string, tx relayer.Transaction, polls int, cause error) error {
	updates := map[string]any{"polls": polls}
	switch {
	case tx.Status != "":
		updates["status"] = tx.Status
	case cause != nil:
		updates["status"] = StatusError
	}
	if tx.Hash != "" {
		updates["hash"] = tx.Hash
	}
	if cause != nil {
		updates["error"] = cause.Error()
	}
	res := s.db.WithContext(ctx).
		Model(&FundingTx{}).
		Where("relayer_tx_id = ?", relayerTxID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating funding transaction %s: %w", relayerTxID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating funding transaction %s: %w", relayerTxID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) RecordUpgrade(ctx context.Context, sessionID string, r upgrade.Result) error {
	row := UpgradeTx{
		SessionID:   sessionID,
		Account:     r.Account.Hex(),
		Delegate:    r.Delegate.Hex(),
		Hash:        r.Hash.Hex(),
		ChainID:     r.ChainID,
		RelayerTxID: r.Funding.ID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("recording upgrade transaction %s: %w", row.Hash, err)
	}
	return nil
}

// History lists everything journaled for a session, oldest first.
func (s *Store) History(ctx context.Context, sessionID string) ([]FundingTx, []UpgradeTx, error) {
	var fundings []FundingTx
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id").Find(&fundings).Error; err != nil {
		return nil, nil, fmt.Errorf("listing funding transactions: %w", err)
	}
	var upgrades []UpgradeTx
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id").Find(&upgrades).Error; err != nil {
		return nil, nil, fmt.Errorf("listing upgrade transactions: %w", err)
	}
	return fundings, upgrades, nil
}

// Upgrades lists upgrades sent by an account, newest first.
func (s *Store) Upgrades(ctx context.Context, account string) ([]UpgradeTx, error) {
	var out []UpgradeTx
	if err := s.db.WithContext(ctx).Where("account = ?", account).Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing upgrades of %s: %w", account, err)
	}
	return out, nil
}
