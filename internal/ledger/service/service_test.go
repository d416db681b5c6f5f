package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glamora/internal/clock"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	customerrepo "github.com/smallbiznis/glamora/internal/customer/repository"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	"github.com/smallbiznis/glamora/internal/storecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*gorm.DB, ledgerdomain.Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&ledgerdomain.WalletHistoryEntry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fake,
		Customers: customerrepo.Provide(),
	})

	return db, svc, node, fake
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, storeID snowflake.ID, balance decimal.Decimal) *customerdomain.Customer {
	t.Helper()
	customer := &customerdomain.Customer{
		ID:            node.Generate(),
		StoreID:       storeID,
		Phone:         "98765" + node.Generate().String()[:5],
		Name:          "Asha",
		ReferralCode:  node.Generate().String(),
		AdvanceAmount: balance,
		Status:        customerdomain.CustomerStatusActive,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func walletSum(t *testing.T, db *gorm.DB, customerID snowflake.ID) decimal.Decimal {
	t.Helper()
	var entries []ledgerdomain.WalletHistoryEntry
	require.NoError(t, db.Where("customer_id = ?", customerID).Find(&entries).Error)
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

func TestCredit_IncrementsBalanceAndAppendsHistory(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.Zero)

	entry, err := svc.Credit(context.Background(), db, customer.ID, decimal.RequireFromString("500"), ledgerdomain.ReferenceTypeAppointment, node.Generate(), "Advance received")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, ledgerdomain.TransactionTypeCredit, entry.TransactionType)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("500")))

	var reloaded customerdomain.Customer
	require.NoError(t, db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.Equal(decimal.RequireFromString("500")))
}

func TestDebit_DecrementsBalance(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.RequireFromString("300"))

	entry, err := svc.Debit(context.Background(), db, customer.ID, decimal.RequireFromString("120"), ledgerdomain.ReferenceTypeBill, node.Generate(), "Advance applied")
	require.NoError(t, err)
	assert.Equal(t, ledgerdomain.TransactionTypeDebit, entry.TransactionType)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("-120")))

	var reloaded customerdomain.Customer
	require.NoError(t, db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.Equal(decimal.RequireFromString("180")))
}

func TestDebit_InsufficientBalanceRejected(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.RequireFromString("100"))

	_, err := svc.Debit(context.Background(), db, customer.ID, decimal.RequireFromString("100.01"), ledgerdomain.ReferenceTypeBill, node.Generate(), "too much")
	assert.ErrorIs(t, err, ledgerdomain.ErrInsufficientBalance)

	// Balance and history untouched.
	var reloaded customerdomain.Customer
	require.NoError(t, db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.Equal(decimal.RequireFromString("100")))
	assert.True(t, walletSum(t, db, customer.ID).IsZero())
}

func TestDebit_ExactBalanceAllowed(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.RequireFromString("100"))

	_, err := svc.Debit(context.Background(), db, customer.ID, decimal.RequireFromString("100"), ledgerdomain.ReferenceTypeBill, node.Generate(), "all of it")
	require.NoError(t, err)

	var reloaded customerdomain.Customer
	require.NoError(t, db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.IsZero())
}

func TestDebit_SequentialDoubleDebit(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.RequireFromString("100"))

	// Two bills race for one balance; the second re-reads the drained
	// balance and fails, it does not double-spend.
	_, err := svc.Debit(context.Background(), db, customer.ID, decimal.RequireFromString("80"), ledgerdomain.ReferenceTypeBill, node.Generate(), "first")
	require.NoError(t, err)

	_, err = svc.Debit(context.Background(), db, customer.ID, decimal.RequireFromString("80"), ledgerdomain.ReferenceTypeBill, node.Generate(), "second")
	assert.ErrorIs(t, err, ledgerdomain.ErrInsufficientBalance)

	var reloaded customerdomain.Customer
	require.NoError(t, db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, reloaded.AdvanceAmount.Equal(decimal.RequireFromString("20")))
}

func TestCreditDebit_RejectNonPositiveAmounts(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.RequireFromString("50"))

	_, err := svc.Credit(context.Background(), db, customer.ID, decimal.Zero, ledgerdomain.ReferenceTypeBill, node.Generate(), "")
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)

	_, err = svc.Debit(context.Background(), db, customer.ID, decimal.RequireFromString("-5"), ledgerdomain.ReferenceTypeBill, node.Generate(), "")
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
}

func TestWalletSum_MatchesNetBalanceChange(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.Zero)

	ctx := context.Background()
	_, err := svc.Credit(ctx, db, customer.ID, decimal.RequireFromString("500"), ledgerdomain.ReferenceTypeAppointment, node.Generate(), "")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, db, customer.ID, decimal.RequireFromString("150"), ledgerdomain.ReferenceTypeBill, node.Generate(), "")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, db, customer.ID, decimal.RequireFromString("25"), ledgerdomain.ReferenceTypeBill, node.Generate(), "")
	require.NoError(t, err)

	var reloaded customerdomain.Customer
	require.NoError(t, db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.True(t, walletSum(t, db, customer.ID).Equal(reloaded.AdvanceAmount))
}

func TestFindOrCreateCustomer(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()

	parts := customerdomain.CustomerParts{Phone: "9876543210", Name: "Asha"}
	created, isNew, err := svc.FindOrCreateCustomer(context.Background(), db, storeID, parts)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEmpty(t, created.ReferralCode)
	assert.True(t, created.AdvanceAmount.IsZero())

	again, isNew, err := svc.FindOrCreateCustomer(context.Background(), db, storeID, parts)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, again.ID)
}

func TestFindOrCreateCustomer_RequiresPhone(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)

	_, _, err := svc.FindOrCreateCustomer(context.Background(), db, node.Generate(), customerdomain.CustomerParts{Name: "no phone"})
	assert.ErrorIs(t, err, customerdomain.ErrInvalidPhone)
}

func TestFindOrCreateCustomer_ScopedToStore(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)

	parts := customerdomain.CustomerParts{Phone: "9876543210"}
	first, _, err := svc.FindOrCreateCustomer(context.Background(), db, node.Generate(), parts)
	require.NoError(t, err)
	second, isNew, err := svc.FindOrCreateCustomer(context.Background(), db, node.Generate(), parts)
	require.NoError(t, err)

	assert.True(t, isNew)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCustomerInsert_ConflictKeepsTransactionUsable(t *testing.T) {
	db, _, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	existing := seedCustomer(t, db, node, storeID, decimal.Zero)

	repo := customerrepo.Provide()
	err := db.Transaction(func(tx *gorm.DB) error {
		dup := &customerdomain.Customer{
			ID:           node.Generate(),
			StoreID:      storeID,
			Phone:        existing.Phone,
			ReferralCode: node.Generate().String(),
			Status:       customerdomain.CustomerStatusActive,
		}
		inserted, err := repo.Insert(context.Background(), tx, dup)
		require.NoError(t, err)
		assert.False(t, inserted)

		// A lost race must not poison the transaction; the winner's
		// row stays reachable from the same tx.
		found, err := repo.FindByPhone(context.Background(), tx, storeID, existing.Phone)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, existing.ID, found.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestCredit_StampsActingUser(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	userID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.Zero)

	ctx := storecontext.WithUserID(context.Background(), userID)
	entry, err := svc.Credit(ctx, db, customer.ID, decimal.RequireFromString("50"), ledgerdomain.ReferenceTypeBill, node.Generate(), "Advance received")
	require.NoError(t, err)
	assert.Equal(t, userID, entry.CreatedBy)

	var stored ledgerdomain.WalletHistoryEntry
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, userID, stored.CreatedBy)
}

func TestProcessCustomerAndAdvance(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	refID := node.Generate()
	actingID := node.Generate()

	result, err := svc.ProcessCustomerAndAdvance(context.Background(), db, storeID, ledgerdomain.AdvanceRequest{
		CustomerParts: customerdomain.CustomerParts{Phone: "9812345678", Name: "Meera"},
		AdvanceAmount: decimal.RequireFromString("250"),
	}, ledgerdomain.ReferenceTypeBooking, refID, actingID)
	require.NoError(t, err)

	assert.True(t, result.IsNewCustomer)
	require.NotNil(t, result.AdvanceEntry)
	assert.Equal(t, ledgerdomain.ReferenceTypeBooking, result.AdvanceEntry.ReferenceType)
	assert.Equal(t, refID, result.AdvanceEntry.ReferenceID)
	assert.Equal(t, actingID, result.AdvanceEntry.CreatedBy)

	var reloaded customerdomain.Customer
	require.NoError(t, db.First(&reloaded, "id = ?", result.CustomerID).Error)
	assert.True(t, reloaded.AdvanceAmount.Equal(decimal.RequireFromString("250")))
}

func TestProcessCustomerAndAdvance_ZeroAdvanceWritesNoHistory(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()

	result, err := svc.ProcessCustomerAndAdvance(context.Background(), db, storeID, ledgerdomain.AdvanceRequest{
		CustomerParts: customerdomain.CustomerParts{Phone: "9800000001"},
	}, ledgerdomain.ReferenceTypeEnquiry, node.Generate(), node.Generate())
	require.NoError(t, err)

	assert.Nil(t, result.AdvanceEntry)
	assert.True(t, walletSum(t, db, result.CustomerID).IsZero())
}

func TestListWalletHistory(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.Zero)

	ctx := storecontext.WithStoreID(context.Background(), storeID)
	_, err := svc.Credit(ctx, db, customer.ID, decimal.RequireFromString("100"), ledgerdomain.ReferenceTypeAppointment, node.Generate(), "")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, db, customer.ID, decimal.RequireFromString("40"), ledgerdomain.ReferenceTypeBill, node.Generate(), "")
	require.NoError(t, err)

	resp, err := svc.ListWalletHistory(ctx, ledgerdomain.ListWalletHistoryRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 2)
}

func TestListWalletHistory_RequiresStoreScope(t *testing.T) {
	db, svc, node, _ := setupLedgerTest(t)
	storeID := node.Generate()
	customer := seedCustomer(t, db, node, storeID, decimal.Zero)
	_ = db

	// Wrong store sees nothing, not another store's wallet.
	ctx := storecontext.WithStoreID(context.Background(), node.Generate())
	_, err := svc.ListWalletHistory(ctx, ledgerdomain.ListWalletHistoryRequest{CustomerID: customer.ID.String()})
	assert.ErrorIs(t, err, customerdomain.ErrNotFound)
}
