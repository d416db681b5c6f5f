package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrInvalidStore        = errors.New("invalid_store")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInsufficientBalance = errors.New("insufficient_balance")
)

// AdvanceRequest is the shared payload shape appointments, bookings and
// enquiries submit: optional profile parts plus an optional upfront advance.
type AdvanceRequest struct {
	customerdomain.CustomerParts
	AdvanceAmount decimal.Decimal `json:"advance_amount"`
}

// AdvanceResult reports customer resolution and the wallet entry written for
// the upfront advance, if any.
type AdvanceResult struct {
	CustomerID    snowflake.ID             `json:"customer_id"`
	Customer      *customerdomain.Customer `json:"customer"`
	IsNewCustomer bool                     `json:"is_new_customer"`
	AdvanceEntry  *WalletHistoryEntry      `json:"advance_entry,omitempty"`
}

type ListWalletHistoryRequest struct {
	pagination.Pagination
	CustomerID string
	From       *time.Time
	To         *time.Time
}

type ListWalletHistoryResponse struct {
	pagination.PageInfo
	Entries []WalletHistoryEntry `json:"entries"`
}

// Service owns Customer.AdvanceAmount and the wallet history. Credit and
// Debit run inside the caller's transaction; no caller mutates the balance
// directly.
type Service interface {
	// Credit increments the advance balance. amount must be positive.
	Credit(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, amount decimal.Decimal, refType ReferenceType, refID snowflake.ID, description string) (*WalletHistoryEntry, error)

	// Debit decrements the advance balance after a sufficiency check under a
	// row lock. Returns ErrInsufficientBalance when amount exceeds the
	// balance read at debit time.
	Debit(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, amount decimal.Decimal, refType ReferenceType, refID snowflake.ID, description string) (*WalletHistoryEntry, error)

	// FindOrCreateCustomer resolves (store, phone) to one customer record,
	// creating it with a fresh referral code and zeroed balances when absent.
	FindOrCreateCustomer(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, parts customerdomain.CustomerParts) (*customerdomain.Customer, bool, error)

	// ProcessCustomerAndAdvance resolves the customer then credits the
	// requested upfront advance, if any. Shared by appointment, booking and
	// enquiry creation.
	ProcessCustomerAndAdvance(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, req AdvanceRequest, refType ReferenceType, refID snowflake.ID, actingUserID snowflake.ID) (*AdvanceResult, error)

	ListWalletHistory(ctx context.Context, req ListWalletHistoryRequest) (ListWalletHistoryResponse, error)
}
