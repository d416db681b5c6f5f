package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Validate rejects malformed or inconsistent payloads before any core logic
// runs. Passing here guarantees no side effects have occurred yet.
func (r CreateBillRequest) Validate() error {
	supplied := 0
	if strings.TrimSpace(r.CustomerID) != "" {
		supplied++
	}
	if r.Customer != nil {
		supplied++
	}
	if r.CustomerDetails != nil {
		supplied++
	}
	if supplied != 1 {
		return ErrInvalidCustomerField
	}

	if len(r.Items) == 0 {
		return ErrInvalidItems
	}
	for _, item := range r.Items {
		if !item.ItemType.Valid() {
			return ErrInvalidItemType
		}
		if strings.TrimSpace(item.ItemID) == "" {
			return ErrInvalidItems
		}
		if !item.Quantity.IsPositive() {
			return ErrInvalidQuantity
		}
		if err := item.Discount.validate(); err != nil {
			return err
		}
		if item.Price != nil && item.Price.IsNegative() {
			return ErrInvalidItems
		}
		// A negative direct-mode input would read as a fractional rate and
		// drive the line total below zero.
		if item.CGST.IsNegative() || item.SGST.IsNegative() {
			return ErrInvalidTax
		}
	}

	if r.Discount.IsNegative() || r.PaymentAmount.IsNegative() {
		return ErrInvalidDiscount
	}
	if r.BillingAt.IsZero() {
		return ErrInvalidBillingTime
	}

	return r.validatePayments()
}

// validatePayments enforces the payment-mode/array consistency contract:
// none means nothing collected; split needs at least two lines summing to the
// declared amount; any single mode needs exactly one line matching the
// declared amount whose mode either equals the declared mode or is advance
// (so an advance-funded bill can declare an arbitrary outward-facing mode).
func (r CreateBillRequest) validatePayments() error {
	for _, p := range r.Payments {
		if !p.Mode.validInstrument() {
			return ErrInvalidPaymentMode
		}
		if !p.Amount.IsPositive() {
			return ErrInvalidPayments
		}
	}

	switch r.PaymentMode {
	case PaymentModeNone:
		if !r.PaymentAmount.IsZero() || len(r.Payments) != 0 {
			return ErrInvalidPayments
		}
		return nil
	case PaymentModeSplit:
		if len(r.Payments) < 2 {
			return ErrInvalidPayments
		}
		if !sumPayments(r.Payments).Equal(r.PaymentAmount) {
			return ErrPaymentSumMismatch
		}
		return nil
	case PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeWallet, PaymentModeAdvance:
		if len(r.Payments) != 1 {
			return ErrInvalidPayments
		}
		line := r.Payments[0]
		if !line.Amount.Equal(r.PaymentAmount) {
			return ErrPaymentSumMismatch
		}
		if line.Mode != r.PaymentMode && line.Mode != PaymentModeAdvance {
			return ErrInvalidPaymentMode
		}
		return nil
	default:
		return ErrInvalidPaymentMode
	}
}

func (d DiscountSpec) validate() error {
	switch d.Type {
	case "":
		return nil
	case DiscountTypePercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidDiscount
		}
		return nil
	case DiscountTypeFlat:
		if d.Value.IsNegative() {
			return ErrInvalidDiscount
		}
		return nil
	default:
		return ErrInvalidDiscount
	}
}

func sumPayments(payments []PaymentRequest) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
