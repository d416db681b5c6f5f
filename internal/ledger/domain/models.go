package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TransactionType marks the direction of a wallet movement.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// ReferenceType identifies the entity that caused a wallet movement.
type ReferenceType string

const (
	ReferenceTypeBill        ReferenceType = "bill"
	ReferenceTypeAppointment ReferenceType = "appointment"
	ReferenceTypeBooking     ReferenceType = "booking"
	ReferenceTypeEnquiry     ReferenceType = "enquiry"
)

// WalletHistoryEntry is the append-only audit record for every advance
// balance movement. Amount is signed: positive for credits, negative for
// debits. Rows are never updated or deleted.
type WalletHistoryEntry struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID      snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	TransactionType TransactionType `gorm:"type:text;not null" json:"transaction_type"`
	ReferenceType   ReferenceType   `gorm:"type:text;not null" json:"reference_type"`
	ReferenceID     snowflake.ID    `gorm:"not null;index" json:"reference_id"`
	Description     string          `gorm:"type:text" json:"description"`
	CreatedBy       snowflake.ID    `json:"created_by,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (WalletHistoryEntry) TableName() string { return "wallet_histories" }
