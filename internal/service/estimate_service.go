package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/costing"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/mapper"
	"github.com/jengaest/estimation-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EstimateService handles business logic for estimates and their items.
// Derived cost fields are recomputed by the model's save hook; this service
// only ever writes the independent inputs.
type EstimateService struct {
	estimateRepo *repository.EstimateRepository
	itemRepo     *repository.EstimateItemRepository
	revisionRepo *repository.RevisionRepository
	refs         *ReferenceService
	logger       *zap.Logger
}

func NewEstimateService(
	estimateRepo *repository.EstimateRepository,
	itemRepo *repository.EstimateItemRepository,
	revisionRepo *repository.RevisionRepository,
	refs *ReferenceService,
	logger *zap.Logger,
) *EstimateService {
	return &EstimateService{
		estimateRepo: estimateRepo,
		itemRepo:     itemRepo,
		revisionRepo: revisionRepo,
		refs:         refs,
		logger:       logger,
	}
}

// Create builds a new estimate from the request. The base rate and the
// location multiplier come from reference data, never from the client.
func (s *EstimateService) Create(ctx context.Context, actor Actor, req *domain.CreateEstimateRequest) (*domain.EstimateDTO, error) {
	pt, err := s.refs.GetProjectType(ctx, req.ProjectTypeID)
	if err != nil {
		return nil, err
	}
	loc, err := s.refs.GetLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}

	area, err := parseDecimalField("total_area", req.TotalArea)
	if err != nil {
		return nil, err
	}
	if !area.IsPositive() {
		return nil, fmt.Errorf("%w: total_area must be greater than zero", ErrInvalidInput)
	}

	status := domain.EstimateStatusDraft
	if req.Status != "" {
		status = domain.EstimateStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	estimate := &domain.Estimate{
		UserID:                actor.UserID,
		ProjectTypeID:         pt.ID,
		LocationID:            loc.ID,
		Source:                domain.EstimateSourceManual,
		ProjectName:           req.ProjectName,
		ProjectDescription:    req.ProjectDescription,
		TotalArea:             area,
		BaseCostPerSqm:        pt.BaseCostPerSqm,
		LocationMultiplier:    loc.CostMultiplier,
		ContingencyPercentage: costing.DefaultContingencyPercentage,
		Status:                status,
		IsPublic:              req.IsPublic,
	}
	if req.ContingencyPercentage != nil {
		pct, err := parseDecimalField("contingency_percentage", *req.ContingencyPercentage)
		if err != nil {
			return nil, err
		}
		if pct.IsNegative() {
			return nil, fmt.Errorf("%w: contingency_percentage must not be negative", ErrInvalidInput)
		}
		estimate.ContingencyPercentage = pct
	}

	for i := range req.Items {
		item, err := buildItem(&req.Items[i])
		if err != nil {
			return nil, err
		}
		estimate.Items = append(estimate.Items, *item)
	}

	if err := s.estimateRepo.Create(ctx, estimate); err != nil {
		return nil, fmt.Errorf("creating estimate: %w", err)
	}

	s.logger.Info("estimate created",
		zap.String("estimate_id", estimate.ID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.String("project_name", estimate.ProjectName),
	)

	estimate.ProjectType = pt
	estimate.Location = loc
	dto := mapper.ToEstimateDTO(estimate)
	return &dto, nil
}

// Get returns an estimate readable by the user (owned or public).
func (s *EstimateService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*domain.EstimateDTO, error) {
	estimate, err := s.loadReadable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToEstimateDTO(estimate)
	return &dto, nil
}

// List returns the caller's estimates, newest first. Admins see every
// user's estimates.
func (s *EstimateService) List(ctx context.Context, actor Actor, filter repository.ListFilter, page, pageSize int) (*domain.EstimateListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if !actor.Admin {
		filter.UserID = actor.UserID
	}

	estimates, total, err := s.estimateRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.EstimateSummaryDTO, 0, len(estimates))
	for i := range estimates {
		summaries = append(summaries, mapper.ToEstimateSummaryDTO(&estimates[i]))
	}
	return &domain.EstimateListResponse{
		Estimates: summaries,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// Summaries returns a lightweight, unpaginated listing for pickers and
// dashboards.
func (s *EstimateService) Summaries(ctx context.Context, actor Actor, filter repository.ListFilter) ([]domain.EstimateSummaryDTO, error) {
	if !actor.Admin {
		filter.UserID = actor.UserID
	}
	estimates, err := s.estimateRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.EstimateSummaryDTO, 0, len(estimates))
	for i := range estimates {
		summaries = append(summaries, mapper.ToEstimateSummaryDTO(&estimates[i]))
	}
	return summaries, nil
}

// Update applies the changed fields and records a revision when the total
// estimated cost moves.
func (s *EstimateService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *domain.UpdateEstimateRequest) (*domain.EstimateDTO, error) {
	estimate, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	previousTotal := estimate.TotalEstimatedCost
	var changed []string

	if req.ProjectName != nil && *req.ProjectName != estimate.ProjectName {
		estimate.ProjectName = *req.ProjectName
		changed = append(changed, "project_name")
	}
	if req.ProjectDescription != nil && *req.ProjectDescription != estimate.ProjectDescription {
		estimate.ProjectDescription = *req.ProjectDescription
		changed = append(changed, "project_description")
	}
	if req.ProjectTypeID != nil && *req.ProjectTypeID != estimate.ProjectTypeID {
		pt, err := s.refs.GetProjectType(ctx, *req.ProjectTypeID)
		if err != nil {
			return nil, err
		}
		estimate.ProjectTypeID = pt.ID
		estimate.BaseCostPerSqm = pt.BaseCostPerSqm
		estimate.ProjectType = nil
		changed = append(changed, "project_type")
	}
	if req.LocationID != nil && *req.LocationID != estimate.LocationID {
		loc, err := s.refs.GetLocation(ctx, *req.LocationID)
		if err != nil {
			return nil, err
		}
		estimate.LocationID = loc.ID
		estimate.LocationMultiplier = loc.CostMultiplier
		estimate.Location = nil
		changed = append(changed, "location")
	}
	if req.TotalArea != nil {
		area, err := parseDecimalField("total_area", *req.TotalArea)
		if err != nil {
			return nil, err
		}
		if !area.IsPositive() {
			return nil, fmt.Errorf("%w: total_area must be greater than zero", ErrInvalidInput)
		}
		if !area.Equal(estimate.TotalArea) {
			estimate.TotalArea = area
			changed = append(changed, "total_area")
		}
	}
	if req.ContingencyPercentage != nil {
		pct, err := parseDecimalField("contingency_percentage", *req.ContingencyPercentage)
		if err != nil {
			return nil, err
		}
		if pct.IsNegative() {
			return nil, fmt.Errorf("%w: contingency_percentage must not be negative", ErrInvalidInput)
		}
		if !pct.Equal(estimate.ContingencyPercentage) {
			estimate.ContingencyPercentage = pct
			changed = append(changed, "contingency_percentage")
		}
	}
	if req.Status != nil {
		status := domain.EstimateStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		if status != estimate.Status {
			estimate.Status = status
			changed = append(changed, "status")
		}
	}
	if req.IsPublic != nil && *req.IsPublic != estimate.IsPublic {
		estimate.IsPublic = *req.IsPublic
		changed = append(changed, "is_public")
	}

	if len(changed) == 0 {
		dto := mapper.ToEstimateDTO(estimate)
		return &dto, nil
	}

	if err := s.estimateRepo.Update(ctx, estimate); err != nil {
		return nil, fmt.Errorf("updating estimate: %w", err)
	}

	if !estimate.TotalEstimatedCost.Equal(previousTotal) {
		if err := s.recordRevision(ctx, estimate, actor.UserID, previousTotal, changed); err != nil {
			// The update itself succeeded; a missing revision row is
			// recoverable and must not fail the request.
			s.logger.Error("failed to record estimate revision",
				zap.String("estimate_id", estimate.ID.String()),
				zap.Error(err),
			)
		}
	}

	return s.Get(ctx, actor, id)
}

// Delete removes an owned estimate and, via cascade, its items.
func (s *EstimateService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}
	return s.estimateRepo.Delete(ctx, id)
}

// Duplicate copies an estimate and its items into a fresh draft.
func (s *EstimateService) Duplicate(ctx context.Context, actor Actor, id uuid.UUID) (*domain.EstimateDTO, error) {
	source, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	copyEstimate := &domain.Estimate{
		UserID:                actor.UserID,
		ProjectTypeID:         source.ProjectTypeID,
		LocationID:            source.LocationID,
		Source:                domain.EstimateSourceManual,
		ProjectName:           source.ProjectName + " (Copy)",
		ProjectDescription:    source.ProjectDescription,
		TotalArea:             source.TotalArea,
		BaseCostPerSqm:        source.BaseCostPerSqm,
		LocationMultiplier:    source.LocationMultiplier,
		ContingencyPercentage: source.ContingencyPercentage,
		Status:                domain.EstimateStatusDraft,
	}
	for i := range source.Items {
		item := source.Items[i]
		copyEstimate.Items = append(copyEstimate.Items, domain.EstimateItem{
			Category:    item.Category,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Notes:       item.Notes,
		})
	}

	if err := s.estimateRepo.Create(ctx, copyEstimate); err != nil {
		return nil, fmt.Errorf("duplicating estimate: %w", err)
	}

	s.logger.Info("estimate duplicated",
		zap.String("source_id", source.ID.String()),
		zap.String("copy_id", copyEstimate.ID.String()),
	)

	return s.Get(ctx, actor, copyEstimate.ID)
}

// Statistics aggregates the user's estimates.
func (s *EstimateService) Statistics(ctx context.Context, userID uuid.UUID) (*domain.StatisticsDTO, error) {
	stats, err := s.estimateRepo.Statistics(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToStatisticsDTO(stats)
	return &dto, nil
}

// Revisions lists the change history for an owned estimate.
func (s *EstimateService) Revisions(ctx context.Context, actor Actor, id uuid.UUID) ([]domain.EstimateRevisionDTO, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	revisions, err := s.revisionRepo.ListByEstimate(ctx, id)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.EstimateRevisionDTO, 0, len(revisions))
	for i := range revisions {
		dtos = append(dtos, mapper.ToEstimateRevisionDTO(&revisions[i]))
	}
	return dtos, nil
}

// AddItem appends a cost line to an owned estimate.
func (s *EstimateService) AddItem(ctx context.Context, actor Actor, estimateID uuid.UUID, req *domain.EstimateItemRequest) (*domain.EstimateItemDTO, error) {
	if _, err := s.loadOwned(ctx, actor, estimateID); err != nil {
		return nil, err
	}
	item, err := buildItem(req)
	if err != nil {
		return nil, err
	}
	item.EstimateID = estimateID
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating estimate item: %w", err)
	}
	dto := mapper.ToEstimateItemDTO(item)
	return &dto, nil
}

// UpdateItem replaces a cost line's fields.
func (s *EstimateService) UpdateItem(ctx context.Context, actor Actor, estimateID, itemID uuid.UUID, req *domain.EstimateItemRequest) (*domain.EstimateItemDTO, error) {
	if _, err := s.loadOwned(ctx, actor, estimateID); err != nil {
		return nil, err
	}
	existing, err := s.itemRepo.GetByID(ctx, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if existing.EstimateID != estimateID {
		return nil, ErrItemNotFound
	}

	updated, err := buildItem(req)
	if err != nil {
		return nil, err
	}
	existing.Category = updated.Category
	existing.Name = updated.Name
	existing.Description = updated.Description
	existing.Quantity = updated.Quantity
	existing.Unit = updated.Unit
	existing.UnitPrice = updated.UnitPrice
	existing.Notes = updated.Notes

	if err := s.itemRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("updating estimate item: %w", err)
	}
	dto := mapper.ToEstimateItemDTO(existing)
	return &dto, nil
}

// DeleteItem removes a cost line.
func (s *EstimateService) DeleteItem(ctx context.Context, actor Actor, estimateID, itemID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actor, estimateID); err != nil {
		return err
	}
	existing, err := s.itemRepo.GetByID(ctx, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	if err != nil {
		return err
	}
	if existing.EstimateID != estimateID {
		return ErrItemNotFound
	}
	return s.itemRepo.Delete(ctx, itemID)
}

func (s *EstimateService) recordRevision(ctx context.Context, estimate *domain.Estimate, userID uuid.UUID, previousTotal decimal.Decimal, changed []string) error {
	number, err := s.revisionRepo.NextRevisionNumber(ctx, estimate.ID)
	if err != nil {
		return err
	}
	return s.revisionRepo.Create(ctx, &domain.EstimateRevision{
		EstimateID:        estimate.ID,
		RevisionNumber:    number,
		ChangesSummary:    "Updated: " + strings.Join(changed, ", "),
		PreviousTotalCost: previousTotal,
		NewTotalCost:      estimate.TotalEstimatedCost,
		CreatedByID:       userID,
	})
}

func (s *EstimateService) loadOwned(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEstimateNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.owns(estimate.UserID) {
		return nil, ErrPermissionDenied
	}
	return estimate, nil
}

func (s *EstimateService) loadReadable(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEstimateNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.owns(estimate.UserID) && !estimate.IsPublic {
		return nil, ErrPermissionDenied
	}
	return estimate, nil
}

func buildItem(req *domain.EstimateItemRequest) (*domain.EstimateItem, error) {
	category := domain.ItemCategory(req.Category)
	if !category.IsValid() {
		category = domain.ItemCategoryOther
	}
	quantity, err := parseDecimalField("quantity", req.Quantity)
	if err != nil {
		return nil, err
	}
	unitPrice, err := parseDecimalField("unit_price", req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: item quantity and unit_price must not be negative", ErrInvalidInput)
	}
	return &domain.EstimateItem{
		Category:    category,
		Name:        req.Name,
		Description: req.Description,
		Quantity:    quantity,
		Unit:        req.Unit,
		UnitPrice:   unitPrice,
		Notes:       req.Notes,
	}, nil
}
