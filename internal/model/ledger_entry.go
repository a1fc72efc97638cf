package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType is the direction of a balance movement.
type LedgerEntryType string

const (
	LedgerEntryCredit LedgerEntryType = "credit"
	LedgerEntryDebit  LedgerEntryType = "debit"
)

// LedgerEntry records one balance movement. Entries are append-only and are
// written in the same transaction as the balance change they describe.
type LedgerEntry struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	UserID        uint            `json:"user_id" gorm:"not null;index"`
	Type          LedgerEntryType `json:"type" gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	BalanceBefore decimal.Decimal `json:"balance_before" gorm:"type:decimal(12,2);not null"`
	BalanceAfter  decimal.Decimal `json:"balance_after" gorm:"type:decimal(12,2);not null"`
	Reason        string          `json:"reason" gorm:"size:255"`
	ReferenceType string          `json:"reference_type,omitempty" gorm:"size:30;index:idx_ledger_ref"`
	ReferenceID   uint            `json:"reference_id,omitempty" gorm:"index:idx_ledger_ref"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
}
