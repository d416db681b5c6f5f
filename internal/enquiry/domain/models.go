package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type EnquiryStatus string

const (
	EnquiryStatusOpen      EnquiryStatus = "open"
	EnquiryStatusConverted EnquiryStatus = "converted"
	EnquiryStatusClosed    EnquiryStatus = "closed"
)

// Enquiry is a walk-in or phone lead. A deposit taken to hold interest goes
// onto the customer's advance balance like any other upfront amount.
type Enquiry struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID    snowflake.ID `gorm:"not null;index" json:"store_id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`

	Subject       string          `gorm:"type:text" json:"subject,omitempty"`
	Status        EnquiryStatus   `gorm:"type:text;not null" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	FollowUpAt    *time.Time      `json:"follow_up_at,omitempty"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"advance_amount"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Enquiry) TableName() string { return "enquiries" }
