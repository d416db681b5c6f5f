package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/glamora/pkg/db/pagination"
)

var (
	ErrInvalidStore = errors.New("invalid_store")
	ErrInvalidPhone = errors.New("invalid_phone")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("customer_not_found")
)

// CustomerParts are the optional profile fields accepted when a customer is
// created lazily on first reference by phone.
type CustomerParts struct {
	Phone       string     `json:"phone"`
	Name        string     `json:"name"`
	Gender      string     `json:"gender"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	Birthday    *time.Time `json:"birthday"`
	Anniversary *time.Time `json:"anniversary"`
}

type ListCustomerRequest struct {
	pagination.Pagination
	Phone  string
	Name   string
	Status string
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Service interface {
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
}
