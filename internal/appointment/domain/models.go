package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment records a scheduled visit. Any upfront advance collected at
// scheduling time lands on the customer's balance through the ledger, tagged
// back to this row.
type Appointment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID    snowflake.ID `gorm:"not null;index" json:"store_id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`

	ScheduledAt   time.Time         `gorm:"not null" json:"scheduled_at"`
	Status        AppointmentStatus `gorm:"type:text;not null" json:"status"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`
	AdvanceAmount decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0" json:"advance_amount"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }
