package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glamora/internal/appointment/domain"
	"github.com/smallbiznis/glamora/internal/clock"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	customerrepo "github.com/smallbiznis/glamora/internal/customer/repository"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	ledgerservice "github.com/smallbiznis/glamora/internal/ledger/service"
	"github.com/smallbiznis/glamora/internal/storecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAppointmentTest(t *testing.T) (*gorm.DB, domain.Service, *snowflake.Node, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&ledgerdomain.WalletHistoryEntry{},
		&domain.Appointment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))

	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fake,
		Customers: customerrepo.Provide(),
	})

	svc := NewService(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Ledger: ledgerSvc,
	})

	storeID := node.Generate()
	ctx := storecontext.WithStoreID(context.Background(), storeID)
	ctx = storecontext.WithUserID(ctx, node.Generate())

	return db, svc, node, ctx
}

func TestCreateAppointment_WithUpfrontAdvance(t *testing.T) {
	db, svc, _, ctx := setupAppointmentTest(t)

	resp, err := svc.Create(ctx, domain.CreateAppointmentRequest{
		AdvanceRequest: ledgerdomain.AdvanceRequest{
			CustomerParts: customerdomain.CustomerParts{Phone: "9876543210", Name: "Asha"},
			AdvanceAmount: decimal.RequireFromString("300"),
		},
		ScheduledAt: time.Date(2026, 3, 20, 11, 0, 0, 0, time.UTC),
		Notes:       "bridal trial",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AppointmentStatusScheduled, resp.Appointment.Status)
	require.NotNil(t, resp.Advance)
	assert.True(t, resp.Advance.IsNewCustomer)
	require.NotNil(t, resp.Advance.AdvanceEntry)
	assert.Equal(t, ledgerdomain.ReferenceTypeAppointment, resp.Advance.AdvanceEntry.ReferenceType)
	assert.Equal(t, resp.Appointment.ID, resp.Advance.AdvanceEntry.ReferenceID)

	var customer customerdomain.Customer
	require.NoError(t, db.First(&customer, "id = ?", resp.Appointment.CustomerID).Error)
	assert.True(t, customer.AdvanceAmount.Equal(decimal.RequireFromString("300")))
}

func TestCreateAppointment_NoAdvance(t *testing.T) {
	db, svc, _, ctx := setupAppointmentTest(t)

	resp, err := svc.Create(ctx, domain.CreateAppointmentRequest{
		AdvanceRequest: ledgerdomain.AdvanceRequest{
			CustomerParts: customerdomain.CustomerParts{Phone: "9812345678"},
		},
		ScheduledAt: time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Advance.AdvanceEntry)

	var count int64
	db.Model(&ledgerdomain.WalletHistoryEntry{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateAppointment_RequiresScheduledAt(t *testing.T) {
	_, svc, _, ctx := setupAppointmentTest(t)

	_, err := svc.Create(ctx, domain.CreateAppointmentRequest{
		AdvanceRequest: ledgerdomain.AdvanceRequest{
			CustomerParts: customerdomain.CustomerParts{Phone: "9812345678"},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidScheduledAt)
}

func TestListAppointments_StoreScoped(t *testing.T) {
	_, svc, node, ctx := setupAppointmentTest(t)

	_, err := svc.Create(ctx, domain.CreateAppointmentRequest{
		AdvanceRequest: ledgerdomain.AdvanceRequest{
			CustomerParts: customerdomain.CustomerParts{Phone: "9812345678"},
		},
		ScheduledAt: time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	list, err := svc.List(ctx, domain.ListAppointmentRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Appointments, 1)

	otherCtx := storecontext.WithStoreID(context.Background(), node.Generate())
	list, err = svc.List(otherCtx, domain.ListAppointmentRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Appointments)
}
