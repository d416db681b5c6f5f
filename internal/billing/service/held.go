package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glamora/internal/billing/domain"
	"github.com/smallbiznis/glamora/internal/storecontext"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Hold parks an in-progress bill verbatim. The payload is stored without
// validation so a half-filled cart survives a shift change; only a non-empty
// payload is required.
func (s *Service) Hold(ctx context.Context, req domain.HoldBillRequest) (*domain.HeldBill, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	actingUserID, _ := storecontext.UserIDFromContext(ctx)

	if len(req.Payload) == 0 || string(req.Payload) == "null" {
		return nil, domain.ErrInvalidItems
	}

	held := domain.HeldBill{
		ID:              s.genID.Generate(),
		StoreID:         storeID,
		Payload:         req.Payload,
		CustomerSummary: s.summarizePayload(req.Payload),
		EstimatedAmount: s.estimateOrNil(ctx, storeID, req.Payload),
		CreatedBy:       actingUserID,
		CreatedAt:       s.clock.Now(),
	}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		held.IdempotencyKey = &key
	}

	if err := s.db.WithContext(ctx).Create(&held).Error; err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.BillsHeld.Inc()
	}
	s.log.Info("bill held",
		zap.String("held_id", held.ID.String()),
		zap.String("store_id", storeID.String()),
	)
	return &held, nil
}

// estimateOrNil tries to price the draft as if it were a complete bill and
// returns nil on any failure. The held payload is allowed to be incomplete,
// so estimation errors are expected and must never fail the hold itself.
func (s *Service) estimateOrNil(ctx context.Context, storeID snowflake.ID, payload []byte) *decimal.Decimal {
	var req domain.CreateBillRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.log.Debug("held estimate skipped", zap.Error(err))
		return nil
	}
	if len(req.Items) == 0 {
		return nil
	}

	taxMode, err := s.catalog.TaxMode(ctx, s.db, storeID, s.defaultTaxMode())
	if err != nil {
		s.log.Debug("held estimate skipped", zap.Error(err))
		return nil
	}
	lines, _, err := s.priceLines(ctx, s.db, storeID, req.Items, taxMode)
	if err != nil {
		s.log.Debug("held estimate skipped", zap.Error(err))
		return nil
	}

	totals := domain.AggregateTotals(lines, req.Discount)
	return &totals.GrandTotal
}

// summarizePayload pulls a short display label out of the draft for the held
// list; best effort, empty when nothing usable is present.
func (s *Service) summarizePayload(payload []byte) string {
	var req domain.CreateBillRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ""
	}
	parts := req.Customer
	if parts == nil {
		parts = req.CustomerDetails
	}
	if parts != nil {
		if name := strings.TrimSpace(parts.Name); name != "" {
			return name
		}
		return strings.TrimSpace(parts.Phone)
	}
	return strings.TrimSpace(req.CustomerID)
}

func (s *Service) GetHeld(ctx context.Context, id string) (*domain.HeldBillDetail, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	heldID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || heldID == 0 {
		return nil, domain.ErrInvalidID
	}

	var held domain.HeldBill
	if err := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, heldID).
		First(&held).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHeldNotFound
		}
		return nil, err
	}

	return &domain.HeldBillDetail{
		Held:                   held,
		SuggestedInvoiceNumber: domain.InvoiceNumber(s.billingCfg.Current().InvoicePrefix, s.clock.Now()),
	}, nil
}

func (s *Service) ListHeld(ctx context.Context, req domain.ListHeldRequest) (domain.ListHeldResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ListHeldResponse{}, domain.ErrInvalidStore
	}

	page := req.Pagination.Normalize()
	var items []*domain.HeldBill
	if err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at desc, id desc").
		Limit(page.PageSize + 1).
		Offset((page.Page - 1) * page.PageSize).
		Find(&items).Error; err != nil {
		return domain.ListHeldResponse{}, err
	}

	items, pageInfo := pagination.Build(items, page)
	held := make([]domain.HeldBill, 0, len(items))
	for _, item := range items {
		held = append(held, *item)
	}
	return domain.ListHeldResponse{PageInfo: pageInfo, Held: held}, nil
}

// DiscardHeld removes the draft outright. Resuming is a client concern: the
// client finalizes via Create then discards the draft it resumed from.
func (s *Service) DiscardHeld(ctx context.Context, id string) error {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ErrInvalidStore
	}
	heldID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || heldID == 0 {
		return domain.ErrInvalidID
	}

	result := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, heldID).
		Delete(&domain.HeldBill{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrHeldNotFound
	}
	return nil
}
