package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glamora/internal/appointment/domain"
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
		log:    p.Log.Named("appointment.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		ledger: p.Ledger,
	}
}

// Create resolves the customer, credits any upfront advance and inserts the
// appointment, all in one transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateAppointmentRequest) (*domain.CreateAppointmentResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	actingUserID, _ := storecontext.UserIDFromContext(ctx)

	if req.ScheduledAt.IsZero() {
		return nil, domain.ErrInvalidScheduledAt
	}

	var resp *domain.CreateAppointmentResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		appointment := domain.Appointment{
			ID:            s.genID.Generate(),
			StoreID:       storeID,
			ScheduledAt:   req.ScheduledAt.UTC(),
			Status:        domain.AppointmentStatusScheduled,
			Notes:         strings.TrimSpace(req.Notes),
			AdvanceAmount: req.AdvanceAmount,
			CreatedBy:     actingUserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		advance, err := s.ledger.ProcessCustomerAndAdvance(ctx, tx, storeID, req.AdvanceRequest, ledgerdomain.ReferenceTypeAppointment, appointment.ID, actingUserID)
		if err != nil {
			return err
		}
		appointment.CustomerID = advance.CustomerID

		if err := tx.WithContext(ctx).Create(&appointment).Error; err != nil {
			return err
		}

		resp = &domain.CreateAppointmentResponse{Appointment: appointment, Advance: advance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment created",
		zap.String("appointment_id", resp.Appointment.ID.String()),
		zap.String("store_id", storeID.String()),
	)
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	appointmentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || appointmentID == 0 {
		return nil, domain.ErrInvalidID
	}

	var appointment domain.Appointment
	if err := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, appointmentID).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAppointmentRequest) (domain.ListAppointmentResponse, error) {
	storeID, ok := storecontext.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ListAppointmentResponse{}, domain.ErrInvalidStore
	}

	page := req.Pagination.Normalize()
	stmt := s.db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("store_id = ?", storeID)
	if status := strings.TrimSpace(req.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if customerID := strings.TrimSpace(req.CustomerID); customerID != "" {
		parsed, err := snowflake.ParseString(customerID)
		if err != nil || parsed == 0 {
			return domain.ListAppointmentResponse{}, domain.ErrInvalidID
		}
		stmt = stmt.Where("customer_id = ?", parsed)
	}

	var items []*domain.Appointment
	if err := stmt.
		Order("scheduled_at desc, id desc").
		Limit(page.PageSize + 1).
		Offset((page.Page - 1) * page.PageSize).
		Find(&items).Error; err != nil {
		return domain.ListAppointmentResponse{}, err
	}

	items, pageInfo := pagination.Build(items, page)
	appointments := make([]domain.Appointment, 0, len(items))
	for _, item := range items {
		appointments = append(appointments, *item)
	}
	return domain.ListAppointmentResponse{PageInfo: pageInfo, Appointments: appointments}, nil
}
