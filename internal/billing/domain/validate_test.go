package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/glamora/internal/catalog/domain"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() CreateBillRequest {
	return CreateBillRequest{
		Customer: &customerdomain.CustomerParts{Phone: "9876543210", Name: "Asha"},
		Items: []BillItemRequest{
			{ItemType: catalogdomain.ItemTypeService, ItemID: "12345", Quantity: d("1")},
		},
		PaymentMode:   PaymentModeCash,
		PaymentAmount: d("100"),
		Payments:      []PaymentRequest{{Mode: PaymentModeCash, Amount: d("100")}},
		BillingAt:     time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidate_AcceptsWellFormedRequest(t *testing.T) {
	require.NoError(t, validRequest().Validate())
}

func TestValidate_ExactlyOneCustomerField(t *testing.T) {
	req := validRequest()
	req.CustomerID = "123"
	assert.ErrorIs(t, req.Validate(), ErrInvalidCustomerField)

	req = validRequest()
	req.Customer = nil
	assert.ErrorIs(t, req.Validate(), ErrInvalidCustomerField)

	req = validRequest()
	req.Customer = nil
	req.CustomerDetails = &customerdomain.CustomerParts{Phone: "9876543210"}
	require.NoError(t, req.Validate())
}

func TestValidate_Items(t *testing.T) {
	req := validRequest()
	req.Items = nil
	assert.ErrorIs(t, req.Validate(), ErrInvalidItems)

	req = validRequest()
	req.Items[0].ItemType = "subscription"
	assert.ErrorIs(t, req.Validate(), ErrInvalidItemType)

	req = validRequest()
	req.Items[0].Quantity = decimal.Zero
	assert.ErrorIs(t, req.Validate(), ErrInvalidQuantity)

	req = validRequest()
	req.Items[0].Discount = DiscountSpec{Type: DiscountTypePercent, Value: d("120")}
	assert.ErrorIs(t, req.Validate(), ErrInvalidDiscount)
}

func TestValidate_RejectsNegativeTaxInputs(t *testing.T) {
	price := d("100")

	req := validRequest()
	req.Items[0].Price = &price
	req.Items[0].CGST = d("-5")
	assert.ErrorIs(t, req.Validate(), ErrInvalidTax)

	req = validRequest()
	req.Items[0].Price = &price
	req.Items[0].SGST = d("-0.05")
	assert.ErrorIs(t, req.Validate(), ErrInvalidTax)
}

func TestValidate_BillingAtRequired(t *testing.T) {
	req := validRequest()
	req.BillingAt = time.Time{}
	assert.ErrorIs(t, req.Validate(), ErrInvalidBillingTime)
}

func TestValidatePayments_NoneMeansNothingCollected(t *testing.T) {
	req := validRequest()
	req.PaymentMode = PaymentModeNone
	req.PaymentAmount = decimal.Zero
	req.Payments = nil
	require.NoError(t, req.Validate())

	req.PaymentAmount = d("10")
	assert.ErrorIs(t, req.Validate(), ErrInvalidPayments)
}

func TestValidatePayments_SplitNeedsTwoLinesSumming(t *testing.T) {
	req := validRequest()
	req.PaymentMode = PaymentModeSplit
	req.PaymentAmount = d("100")
	req.Payments = []PaymentRequest{{Mode: PaymentModeCash, Amount: d("100")}}
	assert.ErrorIs(t, req.Validate(), ErrInvalidPayments)

	req.Payments = []PaymentRequest{
		{Mode: PaymentModeCash, Amount: d("60")},
		{Mode: PaymentModeAdvance, Amount: d("50")},
	}
	assert.ErrorIs(t, req.Validate(), ErrPaymentSumMismatch)

	req.Payments[1].Amount = d("40")
	require.NoError(t, req.Validate())
}

func TestValidatePayments_SingleModeLineMustMatch(t *testing.T) {
	req := validRequest()
	req.Payments[0].Amount = d("90")
	assert.ErrorIs(t, req.Validate(), ErrPaymentSumMismatch)

	req = validRequest()
	req.Payments[0].Mode = PaymentModeCard
	assert.ErrorIs(t, req.Validate(), ErrInvalidPaymentMode)

	// Advance is always an acceptable funding line regardless of the
	// declared outward mode.
	req = validRequest()
	req.Payments[0].Mode = PaymentModeAdvance
	require.NoError(t, req.Validate())
}
