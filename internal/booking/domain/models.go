package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFulfilled BookingStatus = "fulfilled"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking reserves a service slot, optionally backed by an upfront advance
// recorded in the customer ledger.
type Booking struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID    snowflake.ID `gorm:"not null;index" json:"store_id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`

	ServiceName   string          `gorm:"type:text" json:"service_name,omitempty"`
	SlotStart     time.Time       `gorm:"not null" json:"slot_start"`
	SlotEnd       *time.Time      `json:"slot_end,omitempty"`
	Status        BookingStatus   `gorm:"type:text;not null" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"advance_amount"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }
