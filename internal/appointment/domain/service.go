package domain

import (
	"context"
	"errors"
	"time"

	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
)

var (
	ErrInvalidStore       = errors.New("invalid_store")
	ErrInvalidScheduledAt = errors.New("invalid_scheduled_at")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("appointment_not_found")
)

type CreateAppointmentRequest struct {
	ledgerdomain.AdvanceRequest

	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes,omitempty"`
}

type CreateAppointmentResponse struct {
	Appointment Appointment                 `json:"appointment"`
	Advance     *ledgerdomain.AdvanceResult `json:"advance,omitempty"`
}

type ListAppointmentRequest struct {
	pagination.Pagination
	Status     string
	CustomerID string
}

type ListAppointmentResponse struct {
	pagination.PageInfo
	Appointments []Appointment `json:"appointments"`
}

type Service interface {
	Create(ctx context.Context, req CreateAppointmentRequest) (*CreateAppointmentResponse, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, req ListAppointmentRequest) (ListAppointmentResponse, error)
}
