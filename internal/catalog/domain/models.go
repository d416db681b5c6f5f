package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("catalog_item_not_found")

// ItemType distinguishes the three sellable catalog kinds.
type ItemType string

const (
	ItemTypeService    ItemType = "service"
	ItemTypeProduct    ItemType = "product"
	ItemTypeMembership ItemType = "membership"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeService, ItemTypeProduct, ItemTypeMembership:
		return true
	}
	return false
}

// TaxMode is the store-level pricing mode for catalog prices.
type TaxMode string

const (
	TaxModeInclusive TaxMode = "inclusive"
	TaxModeExclusive TaxMode = "exclusive"
)

// CatalogItem is the read-only sellable row billing resolves per line.
// Catalog write paths live outside this service.
type CatalogItem struct {
	ID       snowflake.ID    `gorm:"primaryKey" json:"id"`
	StoreID  snowflake.ID    `gorm:"not null;index" json:"store_id"`
	ItemType ItemType        `gorm:"type:text;not null" json:"item_type"`
	Name     string          `gorm:"type:text;not null" json:"name"`
	Price    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	CGSTRate decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"cgst_rate"`
	SGSTRate decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"sgst_rate"`
	Active   bool            `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

// StoreSetting carries the per-store knobs billing reads.
type StoreSetting struct {
	StoreID    snowflake.ID `gorm:"primaryKey" json:"store_id"`
	TaxBilling TaxMode      `gorm:"type:text;not null;default:'exclusive'" json:"tax_billing"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (StoreSetting) TableName() string { return "store_settings" }
