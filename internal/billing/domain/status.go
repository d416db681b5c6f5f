package domain

import "github.com/shopspring/decimal"

// ResolvePaymentStatus derives dues and status from the grand total and the
// amount collected. Total over both inputs: dues == 0 iff paid; partial only
// when something was collected.
func ResolvePaymentStatus(grandTotal, paidAmount decimal.Decimal) (BillStatus, decimal.Decimal) {
	dues := grandTotal.Sub(paidAmount)
	if dues.IsNegative() {
		dues = decimal.Zero
	}
	switch {
	case dues.IsZero():
		return BillStatusPaid, dues
	case paidAmount.IsPositive():
		return BillStatusPartial, dues
	default:
		return BillStatusUnpaid, dues
	}
}
