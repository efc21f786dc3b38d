package service

import (
	"context"
	"errors"

	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/mapper"
	"github.com/jengaest/estimation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferenceService reads the project type and location catalogs. It backs
// both the catalog endpoints and reference resolution during quote and
// upload handling.
type ReferenceService struct {
	projectTypeRepo *repository.ProjectTypeRepository
	locationRepo    *repository.LocationRepository
	logger          *zap.Logger
}

func NewReferenceService(
	projectTypeRepo *repository.ProjectTypeRepository,
	locationRepo *repository.LocationRepository,
	logger *zap.Logger,
) *ReferenceService {
	return &ReferenceService{
		projectTypeRepo: projectTypeRepo,
		locationRepo:    locationRepo,
		logger:          logger,
	}
}

func (s *ReferenceService) ListProjectTypes(ctx context.Context) ([]domain.ProjectTypeDTO, error) {
	types, err := s.projectTypeRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.ProjectTypeDTO, 0, len(types))
	for i := range types {
		dtos = append(dtos, mapper.ToProjectTypeDTO(&types[i]))
	}
	return dtos, nil
}

func (s *ReferenceService) ListLocations(ctx context.Context) ([]domain.LocationDTO, error) {
	locations, err := s.locationRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.LocationDTO, 0, len(locations))
	for i := range locations {
		dtos = append(dtos, mapper.ToLocationDTO(&locations[i]))
	}
	return dtos, nil
}

func (s *ReferenceService) GetProjectType(ctx context.Context, id uint) (*domain.ProjectType, error) {
	pt, err := s.projectTypeRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectTypeNotFound
	}
	return pt, err
}

func (s *ReferenceService) GetLocation(ctx context.Context, id uint) (*domain.Location, error) {
	loc, err := s.locationRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	return loc, err
}

// ResolveProjectType resolves an id-or-name value from ingested data.
func (s *ReferenceService) ResolveProjectType(ctx context.Context, idOrName string) (*domain.ProjectType, error) {
	pt, err := s.projectTypeRepo.Resolve(ctx, idOrName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectTypeNotFound
	}
	return pt, err
}

// ResolveLocation resolves an id-or-name value from ingested data.
func (s *ReferenceService) ResolveLocation(ctx context.Context, idOrName string) (*domain.Location, error) {
	loc, err := s.locationRepo.Resolve(ctx, idOrName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	return loc, err
}
