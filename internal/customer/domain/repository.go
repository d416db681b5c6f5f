package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository takes *gorm.DB per call so the caller's transaction flows
// through unchanged.
type Repository interface {
	// Insert ignores a (store_id, phone) conflict instead of erroring so the
	// surrounding transaction survives a lost first-reference race; the
	// returned flag reports whether a row was written.
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*Customer, error)
	FindByPhone(ctx context.Context, db *gorm.DB, storeID snowflake.ID, phone string) (*Customer, error)

	// FindByIDForUpdate acquires a row-level lock; must run inside a
	// transaction. Concurrent advance debits serialize on this lock.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	UpdateAdvance(ctx context.Context, db *gorm.DB, id snowflake.ID, amount decimal.Decimal) error

	List(ctx context.Context, db *gorm.DB, storeID snowflake.ID, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
}

type ListCustomerFilter struct {
	Phone  string
	Name   string
	Status CustomerStatus
}
