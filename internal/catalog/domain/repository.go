package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindItem resolves (store, type, id) to a catalog row; nil when absent
	// or inactive.
	FindItem(ctx context.Context, db *gorm.DB, storeID snowflake.ID, itemType ItemType, id snowflake.ID) (*CatalogItem, error)

	// TaxMode returns the store's tax billing setting, falling back to the
	// provided default when no row exists.
	TaxMode(ctx context.Context, db *gorm.DB, storeID snowflake.ID, fallback TaxMode) (TaxMode, error)
}
