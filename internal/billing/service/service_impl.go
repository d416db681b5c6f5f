package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glamora/internal/billing/domain"
	catalogdomain "github.com/smallbiznis/glamora/internal/catalog/domain"
	"github.com/smallbiznis/glamora/internal/clock"
	"github.com/smallbiznis/glamora/internal/config"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/glamora/internal/observability/metrics"
	"github.com/smallbiznis/glamora/internal/storecontext"
	"github.com/smallbiznis/glamora/pkg/db"
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
	BillingCfg *config.BillingConfigHolder
	Customers  customerdomain.Repository
	Catalog    catalogdomain.Repository
	Ledger     ledgerdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	billingCfg *config.BillingConfigHolder
	customers  customerdomain.Repository
	catalog    catalogdomain.Repository
	ledger     ledgerdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		billingCfg: p.BillingCfg,
		customers:  p.Customers,
		catalog:    p.Catalog,
		ledger:     p.Ledger,
		obsMetrics: p.ObsMetrics,
	}
}

// Create runs the whole billing transaction: customer resolution, per-line
// tax computation, invoice issuance, item/payment persistence, advance
// deduction and excess-to-advance crediting. All or nothing; any failure
// rolls the entire bill back.
func (s *Service) Create(ctx context.Context, req domain.CreateBillRequest) (*domain.CreateBillResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	actingUserID, _ := storecontext.UserIDFromContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *domain.CreateBillResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.resolveCustomer(ctx, tx, storeID, req)
		if err != nil {
			return err
		}

		taxMode, err := s.catalog.TaxMode(ctx, tx, storeID, s.defaultTaxMode())
		if err != nil {
			return err
		}

		lines, items, err := s.priceLines(ctx, tx, storeID, req.Items, taxMode)
		if err != nil {
			return err
		}

		billDiscount := req.Discount.Add(s.resolveCouponDiscount(ctx, storeID, req.CouponCode))
		totals := domain.AggregateTotals(lines, billDiscount)

		now := s.clock.Now()
		invoiceNumber := domain.InvoiceNumber(s.billingCfg.Current().InvoicePrefix, now)

		// Provisional status from the caller-declared amount; step 7 below
		// replaces it with what was actually reconciled.
		status, dues := domain.ResolvePaymentStatus(totals.GrandTotal, req.PaymentAmount)

		bill := domain.Bill{
			ID:            s.genID.Generate(),
			StoreID:       storeID,
			CustomerID:    customer.ID,
			InvoiceNumber: invoiceNumber,
			CouponCode:    strings.TrimSpace(req.CouponCode),
			ReferralCode:  strings.TrimSpace(req.ReferralCode),
			SubTotal:      totals.SubTotal,
			Discount:      totals.Discount,
			TaxAmount:     totals.TaxAmount,
			CGSTAmount:    totals.CGSTAmount,
			SGSTAmount:    totals.SGSTAmount,
			GrandTotal:    totals.GrandTotal,
			PaidAmount:    req.PaymentAmount,
			Dues:          dues,
			Status:        status,
			PaymentMode:   req.PaymentMode,
			BillingAt:     req.BillingAt.UTC(),
			PaidAt:        req.PaidAt,
			CreatedBy:     actingUserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
			bill.IdempotencyKey = &key
		}

		if err := tx.WithContext(ctx).Create(&bill).Error; err != nil {
			if bill.IdempotencyKey != nil && db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateIdempotencyKey
			}
			return err
		}

		for i := range items {
			items[i].BillID = bill.ID
			items[i].CreatedAt = now
		}
		if len(items) > 0 {
			rows := make([]domain.BillItem, len(items))
			for i, item := range items {
				rows[i] = item.BillItem
			}
			if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
				return err
			}
		}

		payments, collected, err := s.reconcilePayments(ctx, tx, &bill, customer, req.Payments)
		if err != nil {
			return err
		}

		var excess *decimal.Decimal
		if collected.GreaterThan(totals.GrandTotal) {
			amount := collected.Sub(totals.GrandTotal)
			description := fmt.Sprintf("Excess payment on bill %s moved to advance", invoiceNumber)
			if _, err := s.ledger.Credit(ctx, tx, customer.ID, amount, ledgerdomain.ReferenceTypeBill, bill.ID, description); err != nil {
				return err
			}
			excess = &amount
		}

		finalStatus, finalDues := domain.ResolvePaymentStatus(totals.GrandTotal, collected)
		bill.PaidAmount = collected
		bill.Status = finalStatus
		bill.Dues = finalDues
		bill.UpdatedAt = now
		if finalStatus == domain.BillStatusPaid && bill.PaidAt == nil {
			paidAt := now
			bill.PaidAt = &paidAt
		}
		if err := tx.WithContext(ctx).
			Model(&domain.Bill{}).
			Where("id = ?", bill.ID).
			Updates(map[string]any{
				"paid_amount": bill.PaidAmount,
				"status":      bill.Status,
				"dues":        bill.Dues,
				"paid_at":     bill.PaidAt,
				"updated_at":  bill.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		resp = &domain.CreateBillResponse{
			Bill:                       bill,
			Customer:                   *customer,
			Items:                      items,
			Payments:                   payments,
			Totals:                     totals,
			ExcessAmountAddedToAdvance: excess,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.BillsCreated.WithLabelValues(string(resp.Bill.Status)).Inc()
	}
	s.log.Info("bill created",
		zap.String("bill_id", resp.Bill.ID.String()),
		zap.String("store_id", storeID.String()),
		zap.String("invoice_number", resp.Bill.InvoiceNumber),
		zap.String("grand_total", resp.Bill.GrandTotal.String()),
		zap.String("status", string(resp.Bill.Status)),
	)

	return resp, nil
}

// resolveCustomer maps whichever of the three customer fields was supplied to
// one customer row belonging to the requesting store.
func (s *Service) resolveCustomer(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, req domain.CreateBillRequest) (*customerdomain.Customer, error) {
	if id := strings.TrimSpace(req.CustomerID); id != "" {
		customerID, err := snowflake.ParseString(id)
		if err != nil || customerID == 0 {
			return nil, customerdomain.ErrInvalidID
		}
		customer, err := s.customers.FindByID(ctx, tx, storeID, customerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, customerdomain.ErrNotFound
		}
		return customer, nil
	}

	parts := req.Customer
	if parts == nil {
		parts = req.CustomerDetails
	}
	customer, _, err := s.ledger.FindOrCreateCustomer(ctx, tx, storeID, *parts)
	return customer, err
}

// priceLines resolves each cart line against the catalog and runs the tax
// calculator in whichever pricing mode the payload indicates.
func (s *Service) priceLines(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, items []domain.BillItemRequest, taxMode catalogdomain.TaxMode) ([]domain.ComputedLine, []domain.BillLineView, error) {
	lines := make([]domain.ComputedLine, 0, len(items))
	views := make([]domain.BillLineView, 0, len(items))

	for i, item := range items {
		itemID, err := snowflake.ParseString(strings.TrimSpace(item.ItemID))
		if err != nil || itemID == 0 {
			return nil, nil, domain.ErrInvalidItems
		}
		catalogItem, err := s.catalog.FindItem(ctx, tx, storeID, item.ItemType, itemID)
		if err != nil {
			return nil, nil, err
		}
		if catalogItem == nil {
			return nil, nil, catalogdomain.ErrItemNotFound
		}

		var line domain.ComputedLine
		if item.Price != nil {
			line = domain.ComputeDirectLine(*item.Price, item.Quantity, item.Discount, item.CGST, item.SGST)
		} else {
			line = domain.ComputeCatalogLine(catalogItem.Price, item.Quantity, item.Discount, catalogItem.CGSTRate, catalogItem.SGSTRate, taxMode)
		}
		lines = append(lines, line)

		var staffID snowflake.ID
		if staff := strings.TrimSpace(item.StaffID); staff != "" {
			staffID, err = snowflake.ParseString(staff)
			if err != nil {
				return nil, nil, domain.ErrInvalidStaff
			}
		}

		views = append(views, domain.BillLineView{
			BillItem: domain.BillItem{
				ID:             s.genID.Generate(),
				LineNo:         i + 1,
				ItemType:       item.ItemType,
				ItemID:         catalogItem.ID,
				ItemName:       catalogItem.Name,
				StaffID:        staffID,
				Quantity:       item.Quantity,
				DiscountType:   item.Discount.Type,
				DiscountValue:  item.Discount.Value,
				CGSTRate:       line.CGSTRatePercent,
				SGSTRate:       line.SGSTRatePercent,
				BaseAmount:     line.BaseAmount,
				DiscountAmount: line.DiscountAmount,
				CGSTAmount:     line.CGSTAmount,
				SGSTAmount:     line.SGSTAmount,
				LineTotal:      line.LineTotal,
			},
			PricingMode: line.PricingMode,
		})
	}

	return lines, views, nil
}

// reconcilePayments applies each payment line in order. An advance line
// debits the ledger first; insufficient balance fails the whole bill, never
// just the offending line — a bill without its declared funding source must
// not persist.
func (s *Service) reconcilePayments(ctx context.Context, tx *gorm.DB, bill *domain.Bill, customer *customerdomain.Customer, requests []domain.PaymentRequest) ([]domain.BillPayment, decimal.Decimal, error) {
	payments := make([]domain.BillPayment, 0, len(requests))
	collected := decimal.Zero

	paidAt := bill.BillingAt
	if bill.PaidAt != nil {
		paidAt = *bill.PaidAt
	}

	for _, p := range requests {
		if p.Mode == domain.PaymentModeAdvance {
			description := fmt.Sprintf("Advance applied to bill %s", bill.InvoiceNumber)
			if _, err := s.ledger.Debit(ctx, tx, customer.ID, p.Amount, ledgerdomain.ReferenceTypeBill, bill.ID, description); err != nil {
				if errors.Is(err, ledgerdomain.ErrInsufficientBalance) {
					return nil, decimal.Zero, fmt.Errorf("%w: %w", domain.ErrAdvancePaymentFailed, err)
				}
				return nil, decimal.Zero, err
			}
		}

		row := domain.BillPayment{
			ID:        s.genID.Generate(),
			BillID:    bill.ID,
			Mode:      p.Mode,
			Amount:    p.Amount,
			Reference: strings.TrimSpace(p.Reference),
			PaidAt:    paidAt,
		}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, decimal.Zero, err
		}
		payments = append(payments, row)
		collected = collected.Add(p.Amount)
	}

	return payments, collected, nil
}

// resolveCouponDiscount is the coupon hook. Coupon resolution lives outside
// this service; until it is wired in, every code resolves to zero.
func (s *Service) resolveCouponDiscount(ctx context.Context, storeID snowflake.ID, code string) decimal.Decimal {
	_ = ctx
	if strings.TrimSpace(code) != "" {
		s.log.Debug("coupon code ignored, resolver not configured",
			zap.String("store_id", storeID.String()),
			zap.String("coupon_code", code),
		)
	}
	return decimal.Zero
}

func (s *Service) defaultTaxMode() catalogdomain.TaxMode {
	if s.billingCfg.Current().DefaultTaxMode == string(catalogdomain.TaxModeInclusive) {
		return catalogdomain.TaxModeInclusive
	}
	return catalogdomain.TaxModeExclusive
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.BillDetail, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	billID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || billID == 0 {
		return nil, domain.ErrInvalidID
	}

	var bill domain.Bill
	if err := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, billID).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var items []domain.BillItem
	if err := s.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("line_no asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	var payments []domain.BillPayment
	if err := s.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("id asc").
		Find(&payments).Error; err != nil {
		return nil, err
	}

	return &domain.BillDetail{Bill: bill, Items: items, Payments: payments}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBillRequest) (domain.ListBillResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ListBillResponse{}, domain.ErrInvalidStore
	}

	page := req.Pagination.Normalize()
	stmt := s.db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("store_id = ?", storeID)
	if status := strings.TrimSpace(req.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	} else {
		stmt = stmt.Where("status <> ?", domain.BillStatusDeleted)
	}
	if customerID := strings.TrimSpace(req.CustomerID); customerID != "" {
		parsed, err := snowflake.ParseString(customerID)
		if err != nil || parsed == 0 {
			return domain.ListBillResponse{}, customerdomain.ErrInvalidID
		}
		stmt = stmt.Where("customer_id = ?", parsed)
	}
	if req.From != nil {
		stmt = stmt.Where("billing_at >= ?", *req.From)
	}
	if req.To != nil {
		stmt = stmt.Where("billing_at <= ?", *req.To)
	}

	var items []*domain.Bill
	if err := stmt.
		Order("billing_at desc, id desc").
		Limit(page.PageSize + 1).
		Offset((page.Page - 1) * page.PageSize).
		Find(&items).Error; err != nil {
		return domain.ListBillResponse{}, err
	}

	items, pageInfo := pagination.Build(items, page)
	bills := make([]domain.Bill, 0, len(items))
	for _, item := range items {
		bills = append(bills, *item)
	}

	return domain.ListBillResponse{PageInfo: pageInfo, Bills: bills}, nil
}

// Delete soft-deletes: the bill row stays for audit, only status flips.
// Ledger history is untouched; reversing advance movements is a separate
// concern handled by manual adjustment.
func (s *Service) Delete(ctx context.Context, id string) error {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ErrInvalidStore
	}
	billID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || billID == 0 {
		return domain.ErrInvalidID
	}

	now := s.clock.Now()
	result := s.db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("store_id = ? AND id = ? AND status <> ?", storeID, billID, domain.BillStatusDeleted).
		Updates(map[string]any{
			"status":     domain.BillStatusDeleted,
			"deleted_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
