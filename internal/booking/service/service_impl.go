package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glamora/internal/booking/domain"
	"github.com/smallbiznis/glamora/internal/clock"
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
		log:    p.Log.Named("booking.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		ledger: p.Ledger,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.CreateBookingResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	actingUserID, _ := storecontext.UserIDFromContext(ctx)

	if req.SlotStart.IsZero() {
		return nil, domain.ErrInvalidSlot
	}
	if req.SlotEnd != nil && !req.SlotEnd.After(req.SlotStart) {
		return nil, domain.ErrInvalidSlot
	}

	var resp *domain.CreateBookingResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		booking := domain.Booking{
			ID:            s.genID.Generate(),
			StoreID:       storeID,
			ServiceName:   strings.TrimSpace(req.ServiceName),
			SlotStart:     req.SlotStart.UTC(),
			SlotEnd:       req.SlotEnd,
			Status:        domain.BookingStatusConfirmed,
			Notes:         strings.TrimSpace(req.Notes),
			AdvanceAmount: req.AdvanceAmount,
			CreatedBy:     actingUserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		advance, err := s.ledger.ProcessCustomerAndAdvance(ctx, tx, storeID, req.AdvanceRequest, ledgerdomain.ReferenceTypeBooking, booking.ID, actingUserID)
		if err != nil {
			return err
		}
		booking.CustomerID = advance.CustomerID

		if err := tx.WithContext(ctx).Create(&booking).Error; err != nil {
			return err
		}

		resp = &domain.CreateBookingResponse{Booking: booking, Advance: advance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", resp.Booking.ID.String()),
		zap.String("store_id", storeID.String()),
	)
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	bookingID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || bookingID == 0 {
		return nil, domain.ErrInvalidID
	}

	var booking domain.Booking
	if err := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, bookingID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBookingRequest) (domain.ListBookingResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ListBookingResponse{}, domain.ErrInvalidStore
	}

	page := req.Pagination.Normalize()
	stmt := s.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("store_id = ?", storeID)
	if status := strings.TrimSpace(req.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if customerID := strings.TrimSpace(req.CustomerID); customerID != "" {
		parsed, err := snowflake.ParseString(customerID)
		if err != nil || parsed == 0 {
			return domain.ListBookingResponse{}, domain.ErrInvalidID
		}
		stmt = stmt.Where("customer_id = ?", parsed)
	}

	var items []*domain.Booking
	if err := stmt.
		Order("slot_start desc, id desc").
		Limit(page.PageSize + 1).
		Offset((page.Page - 1) * page.PageSize).
		Find(&items).Error; err != nil {
		return domain.ListBookingResponse{}, err
	}

	items, pageInfo := pagination.Build(items, page)
	bookings := make([]domain.Booking, 0, len(items))
	for _, item := range items {
		bookings = append(bookings, *item)
	}
	return domain.ListBookingResponse{PageInfo: pageInfo, Bookings: bookings}, nil
}
