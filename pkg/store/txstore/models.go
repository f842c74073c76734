package txstore

import (
	"time"
)

// StatusError marks a funding transfer whose outcome was never observed.
const StatusError = "error"

// FundingTx is a transfer submitted to a relayer to top up a burner.
type FundingTx struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SessionID   string `gorm:"index" json:"sessionId"`
	RelayerID   string `gorm:"not null" json:"relayerId"`
	RelayerTxID string `gorm:"uniqueIndex;not null" json:"relayerTxId"`
	To          string `gorm:"not null" json:"to"`
	ValueWei    uint64 `json:"valueWei"`
	Speed       string `json:"speed"`
	Status      string `json:"status"`
	Hash        string `json:"hash,omitempty"`
	Polls       int    `json:"polls"`
	Error       string `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (FundingTx) TableName() string {
	return "funding_txs"
}

// UpgradeTx is a SetCode transaction sent by an upgraded account.
type UpgradeTx struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID string `gorm:"index" json:"sessionId"`
	Account   string `gorm:"index;not null" json:"account"`
	Delegate  string `gorm:"not null" json:"delegate"`
	Hash      string `gorm:"uniqueIndex;not null" json:"hash"`
	ChainID   uint64 `json:"chainId"`
	// RelayerTxID links to the FundingTx that paid for the upgrade.
	RelayerTxID string `json:"relayerTxId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (UpgradeTx) TableName() string {
	return "upgrade_txs"
}
