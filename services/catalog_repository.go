package services

import (
	"context"
	"fmt"

	"myootd/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	Upsert(ctx context.Context, items []models.ClothingItem) error
	List(ctx context.Context) ([]models.ClothingItem, error)
}

type GormCatalogRepository struct {
	DB *gorm.DB
}

func (r GormCatalogRepository) Upsert(ctx context.Context, items []models.ClothingItem) error {
	if len(items) == 0 {
		return nil
	}
	tx := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "warmth_rating", "formality", "image_path", "updated_at"}),
	}).Create(&items)
	if tx.Error != nil {
		return fmt.Errorf("upsert %d catalog items: %w", len(items), tx.Error)
	}
	return nil
}

func (r GormCatalogRepository) List(ctx context.Context) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	if err := r.DB.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	return items, nil
}
