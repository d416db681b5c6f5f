package domain

import "github.com/shopspring/decimal"

// BillTotals is the aggregated money block for one bill.
type BillTotals struct {
	SubTotal   decimal.Decimal `json:"sub_total"`
	Discount   decimal.Decimal `json:"discount"`
	CGSTAmount decimal.Decimal `json:"cgst_amount"`
	SGSTAmount decimal.Decimal `json:"sgst_amount"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// AggregateTotals sums computed lines and applies the bill-level discount.
// The bill-level discount is a post-tax rebate: it lands strictly after all
// line-level discounts and taxes, clamped so the grand total never goes
// negative.
func AggregateTotals(lines []ComputedLine, billDiscount decimal.Decimal) BillTotals {
	var t BillTotals
	for _, line := range lines {
		t.SubTotal = t.SubTotal.Add(line.LineTotal)
		t.CGSTAmount = t.CGSTAmount.Add(line.CGSTAmount)
		t.SGSTAmount = t.SGSTAmount.Add(line.SGSTAmount)
	}
	t.TaxAmount = t.CGSTAmount.Add(t.SGSTAmount)

	if billDiscount.IsNegative() {
		billDiscount = decimal.Zero
	}
	t.Discount = billDiscount
	if t.Discount.GreaterThan(t.SubTotal) {
		t.Discount = t.SubTotal
	}

	t.GrandTotal = t.SubTotal.Sub(t.Discount)
	if t.GrandTotal.IsNegative() {
		t.GrandTotal = decimal.Zero
	}
	return t
}
