package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/glamora/internal/catalog/domain"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
	"gorm.io/datatypes"
)

var (
	ErrInvalidStore            = errors.New("invalid_store")
	ErrInvalidCustomerField    = errors.New("invalid_customer_field")
	ErrInvalidItems            = errors.New("invalid_items")
	ErrInvalidItemType         = errors.New("invalid_item_type")
	ErrInvalidQuantity         = errors.New("invalid_quantity")
	ErrInvalidTax              = errors.New("invalid_tax")
	ErrInvalidStaff            = errors.New("invalid_staff")
	ErrInvalidDiscount         = errors.New("invalid_discount")
	ErrInvalidBillingTime      = errors.New("invalid_billing_time")
	ErrInvalidPaymentMode      = errors.New("invalid_payment_mode")
	ErrInvalidPayments         = errors.New("invalid_payments")
	ErrPaymentSumMismatch      = errors.New("payment_sum_mismatch")
	ErrInvalidID               = errors.New("invalid_id")
	ErrNotFound                = errors.New("bill_not_found")
	ErrHeldNotFound            = errors.New("held_bill_not_found")
	ErrAdvancePaymentFailed    = errors.New("advance_payment_failed")
	ErrDuplicateIdempotencyKey = errors.New("duplicate_idempotency_key")
)

// BillItemRequest is one cart line. A non-nil Price selects direct pricing;
// otherwise the catalog unit price and the store tax mode apply.
type BillItemRequest struct {
	ItemType catalogdomain.ItemType `json:"item_type"`
	ItemID   string                 `json:"item_id"`
	StaffID  string                 `json:"staff_id,omitempty"`
	Quantity decimal.Decimal        `json:"quantity"`
	Discount DiscountSpec           `json:"discount"`

	Price *decimal.Decimal `json:"price,omitempty"`
	CGST  decimal.Decimal  `json:"cgst"`
	SGST  decimal.Decimal  `json:"sgst"`
}

type PaymentRequest struct {
	Mode      PaymentMode     `json:"mode"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// CreateBillRequest is the inbound bill payload. Exactly one of CustomerID,
// Customer, CustomerDetails identifies the customer; the two inline fields
// are alternate names for the same shape kept for client compatibility.
type CreateBillRequest struct {
	CustomerID      string                        `json:"customer_id,omitempty"`
	Customer        *customerdomain.CustomerParts `json:"customer,omitempty"`
	CustomerDetails *customerdomain.CustomerParts `json:"customer_details,omitempty"`

	Items        []BillItemRequest `json:"items"`
	Discount     decimal.Decimal   `json:"discount"`
	CouponCode   string            `json:"coupon_code,omitempty"`
	ReferralCode string            `json:"referral_code,omitempty"`

	PaymentMode   PaymentMode      `json:"payment_mode"`
	PaymentAmount decimal.Decimal  `json:"payment_amount"`
	Payments      []PaymentRequest `json:"payments"`

	BillingAt time.Time  `json:"billing_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// BillLineView echoes one computed line back to the caller.
type BillLineView struct {
	BillItem
	PricingMode PricingMode `json:"pricing_mode"`
}

type CreateBillResponse struct {
	Bill     Bill                    `json:"bill"`
	Customer customerdomain.Customer `json:"customer"`
	Items    []BillLineView          `json:"items"`
	Payments []BillPayment           `json:"payments"`
	Totals   BillTotals              `json:"totals"`

	ExcessAmountAddedToAdvance *decimal.Decimal `json:"excess_amount_added_to_advance,omitempty"`
}

type BillDetail struct {
	Bill     Bill          `json:"bill"`
	Items    []BillItem    `json:"items"`
	Payments []BillPayment `json:"payments"`
}

type ListBillRequest struct {
	pagination.Pagination
	Status     string
	CustomerID string
	From       *time.Time
	To         *time.Time
}

type ListBillResponse struct {
	pagination.PageInfo
	Bills []Bill `json:"bills"`
}

// HoldBillRequest carries the raw, unvalidated draft payload verbatim.
type HoldBillRequest struct {
	Payload        datatypes.JSON `json:"payload"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

type HeldBillDetail struct {
	Held HeldBill `json:"held"`

	// SuggestedInvoiceNumber is freshly generated at retrieval time for the
	// UI to pre-fill on resume; holding never allocates one.
	SuggestedInvoiceNumber string `json:"suggested_invoice_number"`
}

type ListHeldRequest struct {
	pagination.Pagination
}

type ListHeldResponse struct {
	pagination.PageInfo
	Held []HeldBill `json:"held"`
}

type Service interface {
	Create(ctx context.Context, req CreateBillRequest) (*CreateBillResponse, error)
	GetByID(ctx context.Context, id string) (*BillDetail, error)
	List(ctx context.Context, req ListBillRequest) (ListBillResponse, error)
	Delete(ctx context.Context, id string) error

	Hold(ctx context.Context, req HoldBillRequest) (*HeldBill, error)
	GetHeld(ctx context.Context, id string) (*HeldBillDetail, error)
	ListHeld(ctx context.Context, req ListHeldRequest) (ListHeldResponse, error)
	DiscardHeld(ctx context.Context, id string) error
}
