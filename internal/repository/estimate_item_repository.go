package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"gorm.io/gorm"
)

type EstimateItemRepository struct {
	db *gorm.DB
}

func NewEstimateItemRepository(db *gorm.DB) *EstimateItemRepository {
	return &EstimateItemRepository{db: db}
}

func (r *EstimateItemRepository) Create(ctx context.Context, item *domain.EstimateItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *EstimateItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EstimateItem, error) {
	var item domain.EstimateItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *EstimateItemRepository) ListByEstimate(ctx context.Context, estimateID uuid.UUID) ([]domain.EstimateItem, error) {
	var items []domain.EstimateItem
	err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("category, name").
		Find(&items).Error
	return items, err
}

func (r *EstimateItemRepository) Update(ctx context.Context, item *domain.EstimateItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *EstimateItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.EstimateItem{}, "id = ?", id).Error
}

func (r *EstimateItemRepository) DeleteByEstimate(ctx context.Context, estimateID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.EstimateItem{}, "estimate_id = ?", estimateID).Error
}
