package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glamora/internal/clock"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/glamora/internal/observability/metrics"
	"github.com/smallbiznis/glamora/internal/storecontext"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Customers  customerdomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	customers  customerdomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		customers:  p.Customers,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Credit(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, amount decimal.Decimal, refType ledgerdomain.ReferenceType, refID snowflake.ID, description string) (*ledgerdomain.WalletHistoryEntry, error) {
	if !amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}

	customer, err := s.customers.FindByIDForUpdate(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ledgerdomain.ErrInvalidCustomer
	}

	newBalance := customer.AdvanceAmount.Add(amount)
	if err := s.customers.UpdateAdvance(ctx, tx, customerID, newBalance); err != nil {
		return nil, err
	}

	entry, err := s.appendHistory(ctx, tx, customerID, amount, ledgerdomain.TransactionTypeCredit, refType, refID, description)
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.LedgerCredits.Inc()
	}
	s.log.Info("advance credited",
		zap.String("customer_id", customerID.String()),
		zap.String("amount", amount.String()),
		zap.String("reference_type", string(refType)),
		zap.String("reference_id", refID.String()),
	)

	return entry, nil
}

func (s *Service) Debit(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, amount decimal.Decimal, refType ledgerdomain.ReferenceType, refID snowflake.ID, description string) (*ledgerdomain.WalletHistoryEntry, error) {
	if !amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}

	// Balance is re-read under the row lock at debit time; values cached by
	// earlier steps of the surrounding transaction are not trusted.
	customer, err := s.customers.FindByIDForUpdate(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ledgerdomain.ErrInvalidCustomer
	}

	if amount.GreaterThan(customer.AdvanceAmount) {
		if s.obsMetrics != nil {
			s.obsMetrics.LedgerRejected.Inc()
		}
		return nil, ledgerdomain.ErrInsufficientBalance
	}

	newBalance := customer.AdvanceAmount.Sub(amount)
	if err := s.customers.UpdateAdvance(ctx, tx, customerID, newBalance); err != nil {
		return nil, err
	}

	entry, err := s.appendHistory(ctx, tx, customerID, amount.Neg(), ledgerdomain.TransactionTypeDebit, refType, refID, description)
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.LedgerDebits.Inc()
	}
	s.log.Info("advance debited",
		zap.String("customer_id", customerID.String()),
		zap.String("amount", amount.String()),
		zap.String("reference_type", string(refType)),
		zap.String("reference_id", refID.String()),
	)

	return entry, nil
}

func (s *Service) FindOrCreateCustomer(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, parts customerdomain.CustomerParts) (*customerdomain.Customer, bool, error) {
	if storeID == 0 {
		return nil, false, ledgerdomain.ErrInvalidStore
	}
	phone := strings.TrimSpace(parts.Phone)
	if phone == "" {
		return nil, false, customerdomain.ErrInvalidPhone
	}

	existing, err := s.customers.FindByPhone(ctx, tx, storeID, phone)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := s.clock.Now()
	customer := &customerdomain.Customer{
		ID:            s.genID.Generate(),
		StoreID:       storeID,
		Phone:         phone,
		Name:          strings.TrimSpace(parts.Name),
		Gender:        strings.TrimSpace(parts.Gender),
		Email:         strings.TrimSpace(parts.Email),
		Address:       strings.TrimSpace(parts.Address),
		Birthday:      parts.Birthday,
		Anniversary:   parts.Anniversary,
		ReferralCode:  newReferralCode(),
		AdvanceAmount: decimal.Zero,
		Dues:          decimal.Zero,
		WalletBalance: decimal.Zero,
		Status:        customerdomain.CustomerStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	inserted, err := s.customers.Insert(ctx, tx, customer)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		// Lost a concurrent first-reference race on (store, phone); the
		// winner's row is authoritative. The no-op insert keeps the
		// surrounding transaction usable for the re-read.
		existing, err := s.customers.FindByPhone(ctx, tx, storeID, phone)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, customerdomain.ErrNotFound
		}
		return existing, false, nil
	}

	s.log.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("store_id", storeID.String()),
	)

	return customer, true, nil
}

func (s *Service) ProcessCustomerAndAdvance(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, req ledgerdomain.AdvanceRequest, refType ledgerdomain.ReferenceType, refID snowflake.ID, actingUserID snowflake.ID) (*ledgerdomain.AdvanceResult, error) {
	if actingUserID != 0 {
		ctx = storecontext.WithUserID(ctx, actingUserID)
	}
	customer, isNew, err := s.FindOrCreateCustomer(ctx, tx, storeID, req.CustomerParts)
	if err != nil {
		return nil, err
	}

	result := &ledgerdomain.AdvanceResult{
		CustomerID:    customer.ID,
		Customer:      customer,
		IsNewCustomer: isNew,
	}

	if req.AdvanceAmount.IsPositive() {
		description := fmt.Sprintf("Advance received for %s #%s", refType, refID)
		entry, err := s.Credit(ctx, tx, customer.ID, req.AdvanceAmount, refType, refID, description)
		if err != nil {
			return nil, err
		}
		result.AdvanceEntry = entry
		// The lock re-read inside Credit saw the pre-credit balance.
		result.Customer.AdvanceAmount = result.Customer.AdvanceAmount.Add(req.AdvanceAmount)
	}

	return result, nil
}

func (s *Service) ListWalletHistory(ctx context.Context, req ledgerdomain.ListWalletHistoryRequest) (ledgerdomain.ListWalletHistoryResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return ledgerdomain.ListWalletHistoryResponse{}, ledgerdomain.ErrInvalidStore
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return ledgerdomain.ListWalletHistoryResponse{}, customerdomain.ErrInvalidID
	}

	customer, err := s.customers.FindByID(ctx, s.db, storeID, customerID)
	if err != nil {
		return ledgerdomain.ListWalletHistoryResponse{}, err
	}
	if customer == nil {
		return ledgerdomain.ListWalletHistoryResponse{}, customerdomain.ErrNotFound
	}

	page := req.Pagination.Normalize()
	stmt := s.db.WithContext(ctx).
		Model(&ledgerdomain.WalletHistoryEntry{}).
		Where("customer_id = ?", customerID)
	if req.From != nil {
		stmt = stmt.Where("created_at >= ?", *req.From)
	}
	if req.To != nil {
		stmt = stmt.Where("created_at <= ?", *req.To)
	}

	var items []*ledgerdomain.WalletHistoryEntry
	if err := stmt.
		Order("created_at desc, id desc").
		Limit(page.PageSize + 1).
		Offset((page.Page - 1) * page.PageSize).
		Find(&items).Error; err != nil {
		return ledgerdomain.ListWalletHistoryResponse{}, err
	}

	items, pageInfo := pagination.Build(items, page)
	entries := make([]ledgerdomain.WalletHistoryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, *item)
	}

	return ledgerdomain.ListWalletHistoryResponse{PageInfo: pageInfo, Entries: entries}, nil
}

func (s *Service) appendHistory(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, amount decimal.Decimal, txType ledgerdomain.TransactionType, refType ledgerdomain.ReferenceType, refID snowflake.ID, description string) (*ledgerdomain.WalletHistoryEntry, error) {
	actingUserID, _ := storecontext.UserIDFromContext(ctx)
	entry := &ledgerdomain.WalletHistoryEntry{
		ID:              s.genID.Generate(),
		CustomerID:      customerID,
		Amount:          amount,
		TransactionType: txType,
		ReferenceType:   refType,
		ReferenceID:     refID,
		Description:     description,
		CreatedBy:       actingUserID,
		CreatedAt:       s.clock.Now(),
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
