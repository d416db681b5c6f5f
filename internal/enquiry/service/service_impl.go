package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glamora/internal/clock"
	"github.com/smallbiznis/glamora/internal/enquiry/domain"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	"github.com/smallbiznis/glamora/internal/storecontext"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Ledger ledgerdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	ledger ledgerdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("enquiry.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		ledger: p.Ledger,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEnquiryRequest) (*domain.CreateEnquiryResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	actingUserID, _ := storecontext.UserIDFromContext(ctx)

	var resp *domain.CreateEnquiryResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		enquiry := domain.Enquiry{
			ID:            s.genID.Generate(),
			StoreID:       storeID,
			Subject:       strings.TrimSpace(req.Subject),
			Status:        domain.EnquiryStatusOpen,
			Notes:         strings.TrimSpace(req.Notes),
			FollowUpAt:    req.FollowUpAt,
			AdvanceAmount: req.AdvanceAmount,
			CreatedBy:     actingUserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		advance, err := s.ledger.ProcessCustomerAndAdvance(ctx, tx, storeID, req.AdvanceRequest, ledgerdomain.ReferenceTypeEnquiry, enquiry.ID, actingUserID)
		if err != nil {
			return err
		}
		enquiry.CustomerID = advance.CustomerID

		if err := tx.WithContext(ctx).Create(&enquiry).Error; err != nil {
			return err
		}

		resp = &domain.CreateEnquiryResponse{Enquiry: enquiry, Advance: advance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("enquiry created",
		zap.String("enquiry_id", resp.Enquiry.ID.String()),
		zap.String("store_id", storeID.String()),
	)
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	enquiryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || enquiryID == 0 {
		return nil, domain.ErrInvalidID
	}

	var enquiry domain.Enquiry
	if err := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, enquiryID).
		First(&enquiry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &enquiry, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEnquiryRequest) (domain.ListEnquiryResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ListEnquiryResponse{}, domain.ErrInvalidStore
	}

	page := req.Pagination.Normalize()
	stmt := s.db.WithContext(ctx).
		Model(&domain.Enquiry{}).
		Where("store_id = ?", storeID)
	if status := strings.TrimSpace(req.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if customerID := strings.TrimSpace(req.CustomerID); customerID != "" {
		parsed, err := snowflake.ParseString(customerID)
		if err != nil || parsed == 0 {
			return domain.ListEnquiryResponse{}, domain.ErrInvalidID
		}
		stmt = stmt.Where("customer_id = ?", parsed)
	}

	var items []*domain.Enquiry
	if err := stmt.
		Order("created_at desc, id desc").
		Limit(page.PageSize + 1).
		Offset((page.Page - 1) * page.PageSize).
		Find(&items).Error; err != nil {
		return domain.ListEnquiryResponse{}, err
	}

	items, pageInfo := pagination.Build(items, page)
	enquiries := make([]domain.Enquiry, 0, len(items))
	for _, item := range items {
		enquiries = append(enquiries, *item)
	}
	return domain.ListEnquiryResponse{PageInfo: pageInfo, Enquiries: enquiries}, nil
}
