package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is the store-scoped customer record. AdvanceAmount is the single
// source of truth for the pre-paid balance and is mutated only by the ledger
// service.
type Customer struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_customers_store_phone,priority:1" json:"store_id"`
	Phone   string       `gorm:"type:text;not null;uniqueIndex:ux_customers_store_phone,priority:2" json:"phone"`

	Name        string     `gorm:"type:text" json:"name"`
	Gender      string     `gorm:"type:text" json:"gender,omitempty"`
	Email       string     `gorm:"type:text" json:"email,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	Anniversary *time.Time `json:"anniversary,omitempty"`

	ReferralCode string `gorm:"type:text;uniqueIndex" json:"referral_code"`

	AdvanceAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"advance_amount"`
	Dues          decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"dues"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"wallet_balance"`
	LoyaltyPoints int64           `gorm:"not null;default:0" json:"loyalty_points"`

	Status CustomerStatus `gorm:"type:text;not null;default:'active'" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
