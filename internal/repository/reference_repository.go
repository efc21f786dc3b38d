package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jengaest/estimation-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectTypeRepository reads the project type catalog.
type ProjectTypeRepository struct {
	db *gorm.DB
}

func NewProjectTypeRepository(db *gorm.DB) *ProjectTypeRepository {
	return &ProjectTypeRepository{db: db}
}

func (r *ProjectTypeRepository) List(ctx context.Context, activeOnly bool) ([]domain.ProjectType, error) {
	var types []domain.ProjectType
	query := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&types).Error
	return types, err
}

func (r *ProjectTypeRepository) GetByID(ctx context.Context, id uint) (*domain.ProjectType, error) {
	var pt domain.ProjectType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pt).Error; err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *ProjectTypeRepository) GetByName(ctx context.Context, name string) (*domain.ProjectType, error) {
	var pt domain.ProjectType
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&pt).Error
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// Resolve looks a project type up by numeric id when the value parses as an
// integer, otherwise by case-insensitive name.
func (r *ProjectTypeRepository) Resolve(ctx context.Context, idOrName string) (*domain.ProjectType, error) {
	if id, err := strconv.ParseUint(strings.TrimSpace(idOrName), 10, 32); err == nil {
		return r.GetByID(ctx, uint(id))
	}
	return r.GetByName(ctx, idOrName)
}

// LocationRepository reads the location catalog.
type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) List(ctx context.Context, activeOnly bool) ([]domain.Location, error) {
	var locations []domain.Location
	query := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&locations).Error
	return locations, err
}

func (r *LocationRepository) GetByID(ctx context.Context, id uint) (*domain.Location, error) {
	var loc domain.Location
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) GetByName(ctx context.Context, name string) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Resolve looks a location up by numeric id when the value parses as an
// integer, otherwise by case-insensitive name.
func (r *LocationRepository) Resolve(ctx context.Context, idOrName string) (*domain.Location, error) {
	if id, err := strconv.ParseUint(strings.TrimSpace(idOrName), 10, 32); err == nil {
		return r.GetByID(ctx, uint(id))
	}
	return r.GetByName(ctx, idOrName)
}
