package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/glamora/internal/catalog/domain"
	"gorm.io/datatypes"
)

// BillStatus is derived from (grand_total, paid_amount); deleted is the
// soft-delete terminal state.
type BillStatus string

const (
	BillStatusPaid    BillStatus = "paid"
	BillStatusPartial BillStatus = "partial"
	BillStatusUnpaid  BillStatus = "unpaid"
	BillStatusDeleted BillStatus = "deleted"
)

// PaymentMode is the outward-facing payment instrument. "advance" draws the
// customer's pre-paid balance down through the ledger.
type PaymentMode string

const (
	PaymentModeNone    PaymentMode = "none"
	PaymentModeCash    PaymentMode = "cash"
	PaymentModeCard    PaymentMode = "card"
	PaymentModeUPI     PaymentMode = "upi"
	PaymentModeWallet  PaymentMode = "wallet"
	PaymentModeAdvance PaymentMode = "advance"
	PaymentModeSplit   PaymentMode = "split"
)

func (m PaymentMode) validInstrument() bool {
	switch m {
	case PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeWallet, PaymentModeAdvance:
		return true
	}
	return false
}

// Bill is created once per billing transaction. The invoice number is
// display-only and deliberately carries no uniqueness constraint; the
// idempotency key does.
type Bill struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID    snowflake.ID `gorm:"not null;index" json:"store_id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`

	InvoiceNumber string `gorm:"type:text;not null;index" json:"invoice_number"`
	CouponCode    string `gorm:"type:text" json:"coupon_code,omitempty"`
	ReferralCode  string `gorm:"type:text" json:"referral_code,omitempty"`

	SubTotal   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sub_total"`
	Discount   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	CGSTAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"cgst_amount"`
	SGSTAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"sgst_amount"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`
	PaidAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"paid_amount"`
	Dues       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"dues"`

	Status      BillStatus  `gorm:"type:text;not null" json:"status"`
	PaymentMode PaymentMode `gorm:"type:text;not null" json:"payment_mode"`

	BillingAt time.Time  `gorm:"not null" json:"billing_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`

	IdempotencyKey *string `gorm:"type:text;uniqueIndex" json:"idempotency_key,omitempty"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt *time.Time   `json:"deleted_at,omitempty"`
}

func (Bill) TableName() string { return "bills" }

// BillItem stores both the computed amounts and the tax inputs normalized
// back to percentage form so the audit trail survives heterogeneous client
// payloads. Immutable once inserted.
type BillItem struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	BillID snowflake.ID `gorm:"not null;uniqueIndex:ux_bill_items_line,priority:1" json:"bill_id"`
	LineNo int          `gorm:"not null;uniqueIndex:ux_bill_items_line,priority:2" json:"line_no"`

	ItemType catalogdomain.ItemType `gorm:"type:text;not null" json:"item_type"`
	ItemID   snowflake.ID           `gorm:"not null" json:"item_id"`
	ItemName string                 `gorm:"type:text;not null" json:"item_name"`
	StaffID  snowflake.ID           `json:"staff_id,omitempty"`

	Quantity      decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	DiscountType  DiscountType    `gorm:"type:text" json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"discount_value"`
	CGSTRate      decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"cgst_rate"`
	SGSTRate      decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"sgst_rate"`

	BaseAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"base_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"discount_amount"`
	CGSTAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"sgst_amount"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"line_total"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BillItem) TableName() string { return "bill_items" }

// BillPayment is one row per payment instrument, including synthetic rows
// recording advance-balance debits.
type BillPayment struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	BillID    snowflake.ID    `gorm:"not null;index" json:"bill_id"`
	Mode      PaymentMode     `gorm:"type:text;not null" json:"mode"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Reference string          `gorm:"type:text" json:"reference,omitempty"`
	PaidAt    time.Time       `gorm:"not null" json:"paid_at"`
}

func (BillPayment) TableName() string { return "bill_payments" }

// HeldBill persists an unvalidated draft payload verbatim plus a best-effort
// amount estimate. Exists only until resumed or discarded; never mutated.
type HeldBill struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index" json:"store_id"`

	Payload         datatypes.JSON   `gorm:"not null" json:"payload"`
	CustomerSummary string           `gorm:"type:text" json:"customer_summary"`
	EstimatedAmount *decimal.Decimal `gorm:"type:decimal(20,2)" json:"estimated_amount,omitempty"`
	IdempotencyKey  *string          `gorm:"type:text" json:"idempotency_key,omitempty"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (HeldBill) TableName() string { return "held_bills" }
