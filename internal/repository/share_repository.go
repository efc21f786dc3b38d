package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"gorm.io/gorm"
)

type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(ctx context.Context, share *domain.EstimateShare) error {
	return r.db.WithContext(ctx).Create(share).Error
}

func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*domain.EstimateShare, error) {
	var share domain.EstimateShare
	err := r.db.WithContext(ctx).
		Preload("Estimate").
		Preload("Estimate.ProjectType").
		Preload("Estimate.Location").
		Preload("Estimate.Items").
		Where("access_token = ?", token).
		First(&share).Error
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *ShareRepository) ListByEstimate(ctx context.Context, estimateID uuid.UUID) ([]domain.EstimateShare, error) {
	var shares []domain.EstimateShare
	err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}

func (r *ShareRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.EstimateShare{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// DeactivateExpired flips is_active off for every share past its expiry.
// Returns the number of shares deactivated.
func (r *ShareRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.EstimateShare{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
