package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glamora/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindItem(ctx context.Context, db *gorm.DB, storeID snowflake.ID, itemType domain.ItemType, id snowflake.ID) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := db.WithContext(ctx).
		Where("store_id = ? AND item_type = ? AND id = ? AND active = ?", storeID, itemType, id, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) TaxMode(ctx context.Context, db *gorm.DB, storeID snowflake.ID, fallback domain.TaxMode) (domain.TaxMode, error) {
	var setting domain.StoreSetting
	err := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return "", err
	}
	if setting.TaxBilling != domain.TaxModeInclusive && setting.TaxBilling != domain.TaxModeExclusive {
		return fallback, nil
	}
	return setting.TaxBilling, nil
}
