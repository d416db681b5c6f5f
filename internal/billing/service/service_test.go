package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	appointmentdomain "github.com/smallbiznis/glamora/internal/appointment/domain"
	"github.com/smallbiznis/glamora/internal/billing/domain"
	bookingdomain "github.com/smallbiznis/glamora/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/glamora/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/glamora/internal/catalog/repository"
	"github.com/smallbiznis/glamora/internal/clock"
	"github.com/smallbiznis/glamora/internal/config"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	customerrepo "github.com/smallbiznis/glamora/internal/customer/repository"
	enquirydomain "github.com/smallbiznis/glamora/internal/enquiry/domain"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	ledgerservice "github.com/smallbiznis/glamora/internal/ledger/service"
	"github.com/smallbiznis/glamora/internal/storecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type billingFixture struct {
	db      *gorm.DB
	svc     domain.Service
	ledger  ledgerdomain.Service
	node    *snowflake.Node
	fake    *clock.FakeClock
	storeID snowflake.ID
	ctx     context.Context
}

func setupBillingTest(t *testing.T) *billingFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&ledgerdomain.WalletHistoryEntry{},
		&catalogdomain.CatalogItem{},
		&catalogdomain.StoreSetting{},
		&domain.Bill{},
		&domain.BillItem{},
		&domain.BillPayment{},
		&domain.HeldBill{},
		&appointmentdomain.Appointment{},
		&bookingdomain.Booking{},
		&enquirydomain.Enquiry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))

	holder, err := config.NewStaticBillingConfigHolder(config.BillingConfig{
		InvoicePrefix:  "INV",
		DefaultTaxMode: "exclusive",
	})
	require.NoError(t, err)

	customers := customerrepo.Provide()
	catalog := catalogrepo.Provide()

	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fake,
		Customers: customers,
	})

	billingSvc := NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		BillingCfg: holder,
		Customers:  customers,
		Catalog:    catalog,
		Ledger:     ledgerSvc,
	})

	storeID := node.Generate()
	ctx := storecontext.WithStoreID(context.Background(), storeID)
	ctx = storecontext.WithUserID(ctx, node.Generate())

	return &billingFixture{
		db:      db,
		svc:     billingSvc,
		ledger:  ledgerSvc,
		node:    node,
		fake:    fake,
		storeID: storeID,
		ctx:     ctx,
	}
}

func (f *billingFixture) seedItem(t *testing.T, price, cgst, sgst string) *catalogdomain.CatalogItem {
	t.Helper()
	item := &catalogdomain.CatalogItem{
		ID:       f.node.Generate(),
		StoreID:  f.storeID,
		ItemType: catalogdomain.ItemTypeService,
		Name:     "Haircut",
		Price:    decimal.RequireFromString(price),
		CGSTRate: decimal.RequireFromString(cgst),
		SGSTRate: decimal.RequireFromString(sgst),
		Active:   true,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func (f *billingFixture) seedCustomerWithAdvance(t *testing.T, balance string) *customerdomain.Customer {
	t.Helper()
	customer := &customerdomain.Customer{
		ID:            f.node.Generate(),
		StoreID:       f.storeID,
		Phone:         "98765" + f.node.Generate().String()[:5],
		Name:          "Asha",
		ReferralCode:  f.node.Generate().String(),
		AdvanceAmount: decimal.RequireFromString(balance),
		Status:        customerdomain.CustomerStatusActive,
	}
	require.NoError(t, f.db.Create(customer).Error)
	return customer
}

func (f *billingFixture) baseRequest(item *catalogdomain.CatalogItem) domain.CreateBillRequest {
	return domain.CreateBillRequest{
		Customer: &customerdomain.CustomerParts{Phone: "9876543210", Name: "Asha"},
		Items: []domain.BillItemRequest{
			{
				ItemType: item.ItemType,
				ItemID:   item.ID.String(),
				Quantity: decimal.NewFromInt(1),
				Discount: domain.DiscountSpec{Type: domain.DiscountTypePercent, Value: decimal.NewFromInt(10)},
			},
		},
		PaymentMode:   domain.PaymentModeCash,
		PaymentAmount: decimal.RequireFromString("1062"),
		Payments: []domain.PaymentRequest{
			{Mode: domain.PaymentModeCash, Amount: decimal.RequireFromString("1062")},
		},
		BillingAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreate_CashBillFullyPaid(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	resp, err := f.svc.Create(f.ctx, f.baseRequest(item))
	require.NoError(t, err)

	assert.True(t, resp.Totals.SubTotal.Equal(decimal.RequireFromString("1062")), resp.Totals.SubTotal.String())
	assert.True(t, resp.Totals.CGSTAmount.Equal(decimal.RequireFromString("81")))
	assert.Equal(t, domain.BillStatusPaid, resp.Bill.Status)
	assert.True(t, resp.Bill.Dues.IsZero())
	assert.Equal(t, "INV20260315100000000", resp.Bill.InvoiceNumber)
	assert.Nil(t, resp.ExcessAmountAddedToAdvance)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, domain.PricingModeCatalog, resp.Items[0].PricingMode)
	assert.Equal(t, "Haircut", resp.Items[0].ItemName)
	require.Len(t, resp.Payments, 1)

	// New customer was created lazily from the inline parts.
	var customer customerdomain.Customer
	require.NoError(t, f.db.First(&customer, "id = ?", resp.Customer.ID).Error)
	assert.Equal(t, "9876543210", customer.Phone)
}

func TestCreate_UnpaidBill(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	req := f.baseRequest(item)
	req.PaymentMode = domain.PaymentModeNone
	req.PaymentAmount = decimal.Zero
	req.Payments = nil

	resp, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	assert.Equal(t, domain.BillStatusUnpaid, resp.Bill.Status)
	assert.True(t, resp.Bill.Dues.Equal(decimal.RequireFromString("1062")))
	assert.True(t, resp.Bill.PaidAmount.IsZero())
	assert.Empty(t, resp.Payments)
}

func TestCreate_SplitAdvanceAndCash(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")
	customer := f.seedCustomerWithAdvance(t, "500")

	req := f.baseRequest(item)
	req.Customer = nil
	req.CustomerID = customer.ID.String()
	req.PaymentMode = domain.PaymentModeSplit
	req.PaymentAmount = decimal.RequireFromString("1062")
	req.Payments = []domain.PaymentRequest{
		{Mode: domain.PaymentModeAdvance, Amount: decimal.RequireFromString("500")},
		{Mode: domain.PaymentModeCash, Amount: decimal.RequireFromString("562")},
	}

	resp, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	assert.Equal(t, domain.BillStatusPaid, resp.Bill.Status)
	require.Len(t, resp.Payments, 2)

	// Advance drained via the ledger, with a sign-matched history row.
	var reloaded customerdomain.Customer
	require.NoError(t, f.db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.IsZero(), reloaded.AdvanceAmount.String())

	var entries []ledgerdomain.WalletHistoryEntry
	require.NoError(t, f.db.Where("customer_id = ?", customer.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.TransactionTypeDebit, entries[0].TransactionType)
	assert.Equal(t, ledgerdomain.ReferenceTypeBill, entries[0].ReferenceType)
	assert.Equal(t, resp.Bill.ID, entries[0].ReferenceID)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("-500")))
}

func TestCreate_InsufficientAdvanceRollsBackWholeBill(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")
	customer := f.seedCustomerWithAdvance(t, "100")

	req := f.baseRequest(item)
	req.Customer = nil
	req.CustomerID = customer.ID.String()
	req.PaymentMode = domain.PaymentModeSplit
	req.Payments = []domain.PaymentRequest{
		{Mode: domain.PaymentModeAdvance, Amount: decimal.RequireFromString("500")},
		{Mode: domain.PaymentModeCash, Amount: decimal.RequireFromString("562")},
	}

	_, err := f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrAdvancePaymentFailed)
	assert.ErrorIs(t, err, ledgerdomain.ErrInsufficientBalance)

	// Nothing persisted: no bill, no items, no payments, balance untouched.
	var billCount, itemCount, paymentCount int64
	f.db.Model(&domain.Bill{}).Count(&billCount)
	f.db.Model(&domain.BillItem{}).Count(&itemCount)
	f.db.Model(&domain.BillPayment{}).Count(&paymentCount)
	assert.Zero(t, billCount)
	assert.Zero(t, itemCount)
	assert.Zero(t, paymentCount)

	var reloaded customerdomain.Customer
	require.NoError(t, f.db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.Equal(decimal.RequireFromString("100")))
}

func TestCreate_ExcessPaymentMovesToAdvance(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	req := f.baseRequest(item)
	req.PaymentAmount = decimal.RequireFromString("1200")
	req.Payments = []domain.PaymentRequest{
		{Mode: domain.PaymentModeCash, Amount: decimal.RequireFromString("1200")},
	}

	resp, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	require.NotNil(t, resp.ExcessAmountAddedToAdvance)
	assert.True(t, resp.ExcessAmountAddedToAdvance.Equal(decimal.RequireFromString("138")))
	assert.Equal(t, domain.BillStatusPaid, resp.Bill.Status)
	// paid_amount records the full collected amount, not the capped total.
	assert.True(t, resp.Bill.PaidAmount.Equal(decimal.RequireFromString("1200")))

	var reloaded customerdomain.Customer
	require.NoError(t, f.db.First(&reloaded, "id = ?", resp.Customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.Equal(decimal.RequireFromString("138")))

	var entries []ledgerdomain.WalletHistoryEntry
	require.NoError(t, f.db.Where("customer_id = ?", resp.Customer.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.TransactionTypeCredit, entries[0].TransactionType)
	assert.Equal(t, resp.Bill.ID, entries[0].ReferenceID)
}

func TestCreate_DirectPricingMode(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	price := decimal.RequireFromString("750")
	req := f.baseRequest(item)
	req.Items[0].Price = &price
	req.Items[0].CGST = decimal.RequireFromString("0.09")
	req.Items[0].SGST = decimal.RequireFromString("0.09")
	req.Items[0].Discount = domain.DiscountSpec{}
	req.PaymentAmount = decimal.RequireFromString("885")
	req.Payments = []domain.PaymentRequest{{Mode: domain.PaymentModeCash, Amount: decimal.RequireFromString("885")}}

	resp, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, domain.PricingModeDirect, resp.Items[0].PricingMode)
	// 750 + 67.50 + 67.50; the catalog price is ignored in direct mode.
	assert.True(t, resp.Totals.GrandTotal.Equal(decimal.RequireFromString("885")), resp.Totals.GrandTotal.String())
	// Rates are normalized to percent for the audit row.
	assert.True(t, resp.Items[0].CGSTRate.Equal(decimal.RequireFromString("9")))
}

func TestCreate_IdempotencyKeyRejectsDuplicate(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	req := f.baseRequest(item)
	req.IdempotencyKey = "pos-1-txn-42"

	_, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateIdempotencyKey)

	var billCount int64
	f.db.Model(&domain.Bill{}).Count(&billCount)
	assert.EqualValues(t, 1, billCount)
}

func TestCreate_MalformedStaffIDRejected(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	req := f.baseRequest(item)
	req.Items[0].StaffID = "not-a-staff-id"

	_, err := f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidStaff)

	var billCount int64
	f.db.Model(&domain.Bill{}).Count(&billCount)
	assert.Zero(t, billCount)
}

func TestCreate_UnknownCatalogItem(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	req := f.baseRequest(item)
	req.Items[0].ItemID = f.node.Generate().String()

	_, err := f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, catalogdomain.ErrItemNotFound)
}

func TestCreate_UnknownCustomerID(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	req := f.baseRequest(item)
	req.Customer = nil
	req.CustomerID = f.node.Generate().String()

	_, err := f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, customerdomain.ErrNotFound)
}

func TestCreate_InclusiveStoreSetting(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1180", "9", "9")
	require.NoError(t, f.db.Create(&catalogdomain.StoreSetting{
		StoreID:    f.storeID,
		TaxBilling: catalogdomain.TaxModeInclusive,
	}).Error)

	req := f.baseRequest(item)
	req.Items[0].Discount = domain.DiscountSpec{}
	req.PaymentAmount = decimal.RequireFromString("1180")
	req.Payments = []domain.PaymentRequest{{Mode: domain.PaymentModeCash, Amount: decimal.RequireFromString("1180")}}

	resp, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	// Inclusive price recombines to the shelf price.
	assert.True(t, resp.Totals.GrandTotal.Equal(decimal.RequireFromString("1180")), resp.Totals.GrandTotal.String())
	assert.True(t, resp.Totals.CGSTAmount.Equal(decimal.RequireFromString("90")))
}

func TestGetListDelete(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	created, err := f.svc.Create(f.ctx, f.baseRequest(item))
	require.NoError(t, err)

	detail, err := f.svc.GetByID(f.ctx, created.Bill.ID.String())
	require.NoError(t, err)
	assert.Len(t, detail.Items, 1)
	assert.Len(t, detail.Payments, 1)

	list, err := f.svc.List(f.ctx, domain.ListBillRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Bills, 1)

	require.NoError(t, f.svc.Delete(f.ctx, created.Bill.ID.String()))

	// Soft-deleted bills drop out of the default listing but the row stays.
	list, err = f.svc.List(f.ctx, domain.ListBillRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Bills)

	var bill domain.Bill
	require.NoError(t, f.db.First(&bill, "id = ?", created.Bill.ID).Error)
	assert.Equal(t, domain.BillStatusDeleted, bill.Status)
	assert.NotNil(t, bill.DeletedAt)

	assert.ErrorIs(t, f.svc.Delete(f.ctx, created.Bill.ID.String()), domain.ErrNotFound)
}

func TestList_ScopedToStore(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	_, err := f.svc.Create(f.ctx, f.baseRequest(item))
	require.NoError(t, err)

	otherCtx := storecontext.WithStoreID(context.Background(), f.node.Generate())
	list, err := f.svc.List(otherCtx, domain.ListBillRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Bills)
}

func TestHoldFlow(t *testing.T) {
	f := setupBillingTest(t)
	item := f.seedItem(t, "1000", "9", "9")

	payload := []byte(`{
		"customer": {"phone": "9876543210", "name": "Asha"},
		"items": [{"item_type": "service", "item_id": "` + item.ID.String() + `", "quantity": "1"}]
	}`)

	held, err := f.svc.Hold(f.ctx, domain.HoldBillRequest{Payload: payload})
	require.NoError(t, err)
	require.NotNil(t, held.EstimatedAmount)
	assert.True(t, held.EstimatedAmount.Equal(decimal.RequireFromString("1180")), held.EstimatedAmount.String())
	assert.Equal(t, "Asha", held.CustomerSummary)

	// Holding never creates a bill, a customer, or an invoice number.
	var billCount, customerCount int64
	f.db.Model(&domain.Bill{}).Count(&billCount)
	f.db.Model(&customerdomain.Customer{}).Count(&customerCount)
	assert.Zero(t, billCount)
	assert.Zero(t, customerCount)

	detail, err := f.svc.GetHeld(f.ctx, held.ID.String())
	require.NoError(t, err)
	assert.Equal(t, held.ID, detail.Held.ID)
	assert.Equal(t, "INV20260315100000000", detail.SuggestedInvoiceNumber)

	// Resuming later suggests a number for the resume time, not the park time.
	f.fake.Advance(90 * time.Second)
	later, err := f.svc.GetHeld(f.ctx, held.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "INV20260315100130000", later.SuggestedInvoiceNumber)

	list, err := f.svc.ListHeld(f.ctx, domain.ListHeldRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Held, 1)

	require.NoError(t, f.svc.DiscardHeld(f.ctx, held.ID.String()))
	_, err = f.svc.GetHeld(f.ctx, held.ID.String())
	assert.ErrorIs(t, err, domain.ErrHeldNotFound)
}

func TestHold_UnpriceableDraftStoredWithoutEstimate(t *testing.T) {
	f := setupBillingTest(t)

	// References an item that does not exist; the hold must still succeed.
	payload := []byte(`{"items": [{"item_type": "service", "item_id": "999999", "quantity": "1"}]}`)

	held, err := f.svc.Hold(f.ctx, domain.HoldBillRequest{Payload: payload})
	require.NoError(t, err)
	assert.Nil(t, held.EstimatedAmount)
}

func TestHold_RejectsEmptyPayload(t *testing.T) {
	f := setupBillingTest(t)

	_, err := f.svc.Hold(f.ctx, domain.HoldBillRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidItems)
}
