package domain

import (
	"context"
	"errors"
	"time"

	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
)

var (
	ErrInvalidStore = errors.New("invalid_store")
	ErrInvalidSlot  = errors.New("invalid_slot")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("booking_not_found")
)

type CreateBookingRequest struct {
	ledgerdomain.AdvanceRequest

	ServiceName string     `json:"service_name,omitempty"`
	SlotStart   time.Time  `json:"slot_start"`
	SlotEnd     *time.Time `json:"slot_end,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type CreateBookingResponse struct {
	Booking Booking                     `json:"booking"`
	Advance *ledgerdomain.AdvanceResult `json:"advance,omitempty"`
}

type ListBookingRequest struct {
	pagination.Pagination
	Status     string
	CustomerID string
}

type ListBookingResponse struct {
	pagination.PageInfo
	Bookings []Booking `json:"bookings"`
}

type Service interface {
	Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, req ListBookingRequest) (ListBookingResponse, error)
}
