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
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("enquiry_not_found")
)

type CreateEnquiryRequest struct {
	ledgerdomain.AdvanceRequest

	Subject    string     `json:"subject,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	FollowUpAt *time.Time `json:"follow_up_at,omitempty"`
}

type CreateEnquiryResponse struct {
	Enquiry Enquiry                     `json:"enquiry"`
	Advance *ledgerdomain.AdvanceResult `json:"advance,omitempty"`
}

type ListEnquiryRequest struct {
	pagination.Pagination
	Status     string
	CustomerID string
}

type ListEnquiryResponse struct {
	pagination.PageInfo
	Enquiries []Enquiry `json:"enquiries"`
}

type Service interface {
	Create(ctx context.Context, req CreateEnquiryRequest) (*CreateEnquiryResponse, error)
	GetByID(ctx context.Context, id string) (*Enquiry, error)
	List(ctx context.Context, req ListEnquiryRequest) (ListEnquiryResponse, error)
}
