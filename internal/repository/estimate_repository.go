package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EstimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

func (r *EstimateRepository) Create(ctx context.Context, estimate *domain.Estimate) error {
	return r.db.WithContext(ctx).Create(estimate).Error
}

func (r *EstimateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Estimate, error) {
	var estimate domain.Estimate
	err := r.db.WithContext(ctx).
		Preload("ProjectType").
		Preload("Location").
		Preload("Items").
		Where("id = ?", id).
		First(&estimate).Error
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (r *EstimateRepository) Update(ctx context.Context, estimate *domain.Estimate) error {
	return r.db.WithContext(ctx).Save(estimate).Error
}

func (r *EstimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Estimate{}, "id = ?", id).Error
}

// ListFilter narrows the estimate listing. A zero UserID means no
// owner restriction (admin listing).
type ListFilter struct {
	UserID        uuid.UUID
	Status        *domain.EstimateStatus
	ProjectTypeID *uint
	LocationID    *uint
	Search        string
}

func (r *EstimateRepository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Estimate{})
	if filter.UserID != uuid.Nil {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProjectTypeID != nil {
		query = query.Where("project_type_id = ?", *filter.ProjectTypeID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(project_name) LIKE ? OR LOWER(project_description) LIKE ?", pattern, pattern)
	}
	return query
}

func (r *EstimateRepository) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]domain.Estimate, int64, error) {
	var estimates []domain.Estimate
	var total int64

	query := r.filtered(ctx, filter).
		Preload("ProjectType").
		Preload("Location").
		Preload("Items")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&estimates).Error

	return estimates, total, err
}

// ListAll returns every matching estimate without pagination, for the
// lightweight summary listing.
func (r *EstimateRepository) ListAll(ctx context.Context, filter ListFilter) ([]domain.Estimate, error) {
	var estimates []domain.Estimate
	err := r.filtered(ctx, filter).
		Preload("ProjectType").
		Preload("Location").
		Order("created_at DESC").
		Find(&estimates).Error
	return estimates, err
}

// Statistics holds the aggregates for one user's estimates.
type Statistics struct {
	Total         int64
	TotalValue    decimal.Decimal
	ByStatus      map[domain.EstimateStatus]int64
	ByProjectType map[string]int64
}

func (r *EstimateRepository) Statistics(ctx context.Context, userID uuid.UUID) (*Statistics, error) {
	stats := &Statistics{
		ByStatus:      make(map[domain.EstimateStatus]int64),
		ByProjectType: make(map[string]int64),
	}

	var totals struct {
		Count int64
		Sum   decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&domain.Estimate{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_estimated_cost), 0) as sum").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.Total = totals.Count
	stats.TotalValue = totals.Sum

	var statusRows []struct {
		Status domain.EstimateStatus
		Count  int64
	}
	err = r.db.WithContext(ctx).Model(&domain.Estimate{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
	}

	var typeRows []struct {
		Name  string
		Count int64
	}
	err = r.db.WithContext(ctx).Model(&domain.Estimate{}).
		Select("project_types.name AS name, COUNT(*) as count").
		Joins("JOIN project_types ON project_types.id = estimates.project_type_id").
		Where("estimates.user_id = ?", userID).
		Group("project_types.name").
		Scan(&typeRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		stats.ByProjectType[row.Name] = row.Count
	}

	return stats, nil
}
