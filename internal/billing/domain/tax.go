package domain

import (
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/glamora/internal/catalog/domain"
)

// PricingMode selects how a line is priced. Catalog mode prices from the
// catalog row under the store's tax setting; direct mode takes unit price and
// tax inputs straight from the payload. Resolved once per line by presence of
// the payload price field.
type PricingMode string

const (
	PricingModeCatalog PricingMode = "catalog"
	PricingModeDirect  PricingMode = "direct"
)

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFlat    DiscountType = "flat"
)

type DiscountSpec struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// TaxInterpretation tags how a direct-mode CGST/SGST input was read. The
// magnitude heuristic is ambiguous at the boundaries (a genuine 1-rupee tax
// amount reads as a 1% rate); it is carried as-is for payload compatibility.
type TaxInterpretation string

const (
	TaxAsFraction TaxInterpretation = "fraction" // value < 1
	TaxAsPercent  TaxInterpretation = "percent"  // 1 <= value <= 100
	TaxAsAmount   TaxInterpretation = "amount"   // value > 100
)

// InterpretTaxInput classifies a direct-mode tax input by magnitude.
func InterpretTaxInput(value decimal.Decimal) TaxInterpretation {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	switch {
	case value.LessThan(one):
		return TaxAsFraction
	case value.LessThanOrEqual(hundred):
		return TaxAsPercent
	default:
		return TaxAsAmount
	}
}

// Amount resolves the input to a tax amount against the taxable base.
func (t TaxInterpretation) Amount(value, taxable decimal.Decimal) decimal.Decimal {
	switch t {
	case TaxAsFraction:
		return taxable.Mul(value)
	case TaxAsPercent:
		return taxable.Mul(value).Div(decimal.NewFromInt(100))
	default:
		return value
	}
}

// RatePercent normalizes the input to a percentage rate for audit storage.
func (t TaxInterpretation) RatePercent(value, taxable decimal.Decimal) decimal.Decimal {
	switch t {
	case TaxAsFraction:
		return value.Mul(decimal.NewFromInt(100))
	case TaxAsPercent:
		return value
	default:
		if taxable.IsZero() {
			return decimal.Zero
		}
		return value.Div(taxable).Mul(decimal.NewFromInt(100))
	}
}

// ComputedLine carries per-line amounts, all rounded half-up to 2 decimal
// places independently per field. LineTotal is the exact sum of the rounded
// taxable and tax fields, so it needs no re-rounding.
type ComputedLine struct {
	PricingMode PricingMode

	BaseAmount     decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	CGSTAmount     decimal.Decimal
	SGSTAmount     decimal.Decimal
	LineTotal      decimal.Decimal

	// Tax inputs normalized to percentage form for audit display.
	CGSTRatePercent decimal.Decimal
	SGSTRatePercent decimal.Decimal

	CGSTInterpretation TaxInterpretation
	SGSTInterpretation TaxInterpretation
}

// ComputeCatalogLine prices a line from its catalog unit price. cgstRate and
// sgstRate are percentages. Under the inclusive mode the catalog price
// already contains tax; the net base is extracted first so that inclusive
// price x qty recombines to the same gross before discount.
func ComputeCatalogLine(price, qty decimal.Decimal, disc DiscountSpec, cgstRate, sgstRate decimal.Decimal, mode catalogdomain.TaxMode) ComputedLine {
	hundred := decimal.NewFromInt(100)

	base := price.Mul(qty)
	if mode == catalogdomain.TaxModeInclusive {
		divisor := decimal.NewFromInt(1).Add(cgstRate.Div(hundred)).Add(sgstRate.Div(hundred))
		base = base.Div(divisor)
	}

	discount := applyDiscount(disc, base)
	taxable := base.Sub(discount)

	cgst := taxable.Mul(cgstRate).Div(hundred)
	sgst := taxable.Mul(sgstRate).Div(hundred)

	return finishLine(PricingModeCatalog, base, discount, taxable, cgst, sgst, ComputedLine{
		CGSTRatePercent: cgstRate,
		SGSTRatePercent: sgstRate,
	})
}

// ComputeDirectLine prices a line from a payload-supplied unit price with
// magnitude-interpreted tax inputs. Discount applies before tax.
func ComputeDirectLine(price, qty decimal.Decimal, disc DiscountSpec, cgstInput, sgstInput decimal.Decimal) ComputedLine {
	base := price.Mul(qty)
	discount := applyDiscount(disc, base)
	taxable := base.Sub(discount)

	cgstInterp := InterpretTaxInput(cgstInput)
	sgstInterp := InterpretTaxInput(sgstInput)

	cgst := cgstInterp.Amount(cgstInput, taxable)
	sgst := sgstInterp.Amount(sgstInput, taxable)

	return finishLine(PricingModeDirect, base, discount, taxable, cgst, sgst, ComputedLine{
		CGSTRatePercent:    cgstInterp.RatePercent(cgstInput, taxable).Round(4),
		SGSTRatePercent:    sgstInterp.RatePercent(sgstInput, taxable).Round(4),
		CGSTInterpretation: cgstInterp,
		SGSTInterpretation: sgstInterp,
	})
}

// applyDiscount computes the discount amount against the base. A flat
// discount is capped at the base so a line can never go negative.
func applyDiscount(disc DiscountSpec, base decimal.Decimal) decimal.Decimal {
	switch disc.Type {
	case DiscountTypePercent:
		return base.Mul(disc.Value).Div(decimal.NewFromInt(100))
	case DiscountTypeFlat:
		if disc.Value.GreaterThan(base) {
			return base
		}
		return disc.Value
	default:
		return decimal.Zero
	}
}

func finishLine(mode PricingMode, base, discount, taxable, cgst, sgst decimal.Decimal, partial ComputedLine) ComputedLine {
	partial.PricingMode = mode
	partial.BaseAmount = base.Round(2)
	partial.DiscountAmount = discount.Round(2)
	partial.TaxableAmount = taxable.Round(2)
	partial.CGSTAmount = cgst.Round(2)
	partial.SGSTAmount = sgst.Round(2)
	partial.LineTotal = partial.TaxableAmount.Add(partial.CGSTAmount).Add(partial.SGSTAmount)
	return partial
}
