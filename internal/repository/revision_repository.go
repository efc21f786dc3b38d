package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"gorm.io/gorm"
)

type RevisionRepository struct {
	db *gorm.DB
}

func NewRevisionRepository(db *gorm.DB) *RevisionRepository {
	return &RevisionRepository{db: db}
}

func (r *RevisionRepository) Create(ctx context.Context, revision *domain.EstimateRevision) error {
	return r.db.WithContext(ctx).Create(revision).Error
}

func (r *RevisionRepository) ListByEstimate(ctx context.Context, estimateID uuid.UUID) ([]domain.EstimateRevision, error) {
	var revisions []domain.EstimateRevision
	err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("revision_number DESC").
		Find(&revisions).Error
	return revisions, err
}

// NextRevisionNumber returns one past the highest existing revision number.
func (r *RevisionRepository) NextRevisionNumber(ctx context.Context, estimateID uuid.UUID) (uint, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&domain.EstimateRevision{}).
		Select("COALESCE(MAX(revision_number), 0)").
		Where("estimate_id = ?", estimateID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return uint(max) + 1, nil
}
