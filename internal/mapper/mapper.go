// Package mapper converts persistence models into response DTOs. Money
// values are rounded to two decimals here and nowhere earlier.
package mapper

import (
	"time"

	"github.com/jengaest/estimation-api/internal/costing"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/ingest"
	"github.com/jengaest/estimation-api/internal/repository"
	"github.com/shopspring/decimal"
)

const timeFormat = "2006-01-02T15:04:05Z"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToProjectTypeDTO converts ProjectType to ProjectTypeDTO
func ToProjectTypeDTO(pt *domain.ProjectType) domain.ProjectTypeDTO {
	return domain.ProjectTypeDTO{
		ID:             pt.ID,
		Name:           pt.Name,
		Category:       string(pt.Category),
		Description:    pt.Description,
		BaseCostPerSqm: money(pt.BaseCostPerSqm),
	}
}

// ToLocationDTO converts Location to LocationDTO
func ToLocationDTO(loc *domain.Location) domain.LocationDTO {
	return domain.LocationDTO{
		ID:             loc.ID,
		Name:           loc.Name,
		Country:        loc.Country,
		Region:         loc.Region,
		City:           loc.City,
		CostMultiplier: loc.CostMultiplier.StringFixed(2),
	}
}

// ToEstimateItemDTO converts EstimateItem to EstimateItemDTO
func ToEstimateItemDTO(item *domain.EstimateItem) domain.EstimateItemDTO {
	return domain.EstimateItemDTO{
		ID:          item.ID,
		Category:    string(item.Category),
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity.StringFixed(2),
		Unit:        item.Unit,
		UnitPrice:   money(item.UnitPrice),
		TotalPrice:  money(item.TotalPrice),
		Notes:       item.Notes,
	}
}

// ToEstimateDTO converts Estimate to its full DTO, including the final total
// with custom items folded in.
func ToEstimateDTO(estimate *domain.Estimate) domain.EstimateDTO {
	items := make([]domain.EstimateItemDTO, 0, len(estimate.Items))
	itemsTotal := decimal.Zero
	for i := range estimate.Items {
		items = append(items, ToEstimateItemDTO(&estimate.Items[i]))
		itemsTotal = itemsTotal.Add(estimate.Items[i].TotalPrice)
	}

	dto := domain.EstimateDTO{
		ID:                    estimate.ID,
		ProjectName:           estimate.ProjectName,
		ProjectDescription:    estimate.ProjectDescription,
		Source:                string(estimate.Source),
		OriginalFilename:      estimate.OriginalFilename,
		TotalArea:             estimate.TotalArea.StringFixed(2),
		BaseCostPerSqm:        money(estimate.BaseCostPerSqm),
		LocationMultiplier:    estimate.LocationMultiplier.StringFixed(2),
		AdjustedCostPerSqm:    money(estimate.AdjustedCostPerSqm),
		TotalEstimatedCost:    money(estimate.TotalEstimatedCost),
		ContingencyPercentage: estimate.ContingencyPercentage.StringFixed(2),
		ContingencyAmount:     money(estimate.ContingencyAmount),
		FinalTotalCost:        money(estimate.TotalEstimatedCost.Add(estimate.ContingencyAmount).Add(itemsTotal)),
		Status:                string(estimate.Status),
		IsPublic:              estimate.IsPublic,
		Items:                 items,
		CreatedAt:             estimate.CreatedAt.Format(timeFormat),
		UpdatedAt:             estimate.UpdatedAt.Format(timeFormat),
	}
	if estimate.ProjectType != nil {
		dto.ProjectType = ToProjectTypeDTO(estimate.ProjectType)
	}
	if estimate.Location != nil {
		dto.Location = ToLocationDTO(estimate.Location)
	}
	return dto
}

// ToEstimateSummaryDTO converts Estimate to its compact list representation
func ToEstimateSummaryDTO(estimate *domain.Estimate) domain.EstimateSummaryDTO {
	dto := domain.EstimateSummaryDTO{
		ID:                 estimate.ID,
		ProjectName:        estimate.ProjectName,
		TotalArea:          estimate.TotalArea.StringFixed(2),
		TotalEstimatedCost: money(estimate.TotalEstimatedCost),
		Status:             string(estimate.Status),
		Source:             string(estimate.Source),
		ItemCount:          len(estimate.Items),
		CreatedAt:          estimate.CreatedAt.Format(timeFormat),
	}
	if estimate.ProjectType != nil {
		dto.ProjectTypeName = estimate.ProjectType.Name
	}
	if estimate.Location != nil {
		dto.LocationName = estimate.Location.Name
	}
	return dto
}

// ToEstimateRevisionDTO converts EstimateRevision to EstimateRevisionDTO
func ToEstimateRevisionDTO(revision *domain.EstimateRevision) domain.EstimateRevisionDTO {
	return domain.EstimateRevisionDTO{
		ID:                revision.ID,
		RevisionNumber:    revision.RevisionNumber,
		ChangesSummary:    revision.ChangesSummary,
		PreviousTotalCost: money(revision.PreviousTotalCost),
		NewTotalCost:      money(revision.NewTotalCost),
		CreatedAt:         revision.CreatedAt.Format(timeFormat),
	}
}

// ToEstimateShareDTO converts EstimateShare to EstimateShareDTO
func ToEstimateShareDTO(share *domain.EstimateShare, shareURL string) domain.EstimateShareDTO {
	return domain.EstimateShareDTO{
		ID:              share.ID,
		EstimateID:      share.EstimateID,
		SharedWithEmail: share.SharedWithEmail,
		SharedWithName:  share.SharedWithName,
		AccessToken:     share.AccessToken,
		ShareURL:        shareURL,
		ExpiresAt:       share.ExpiresAt.Format(timeFormat),
		CreatedAt:       share.CreatedAt.Format(timeFormat),
	}
}

// ToQuoteDTO converts a computed quote plus its reference data to the
// calculation response.
func ToQuoteDTO(quote *costing.Quote, pt *domain.ProjectType, loc *domain.Location) domain.QuoteDTO {
	return domain.QuoteDTO{
		ProjectType: domain.QuoteProjectTypeDTO{
			ID:             pt.ID,
			Name:           pt.Name,
			BaseCostPerSqm: money(pt.BaseCostPerSqm),
		},
		Location: domain.QuoteLocationDTO{
			ID:             loc.ID,
			Name:           loc.Name,
			CostMultiplier: loc.CostMultiplier.StringFixed(2),
		},
		Calculations: domain.QuoteCalculationDTO{
			TotalArea:             quote.TotalArea.StringFixed(2),
			BaseCostPerSqm:        money(quote.BaseCostPerSqm),
			AdjustedCostPerSqm:    money(quote.AdjustedCostPerSqm),
			BaseTotalCost:         money(quote.BaseTotal),
			ContingencyPercentage: quote.ContingencyPercentage.StringFixed(2),
			ContingencyAmount:     money(quote.ContingencyAmount),
			CustomItemsTotal:      money(quote.CustomItemsTotal),
			FinalTotalCost:        money(quote.FinalTotal),
		},
		Breakdown: domain.QuoteBreakdownDTO{
			Materials:   money(quote.Breakdown.Materials),
			Labor:       money(quote.Breakdown.Labor),
			Equipment:   money(quote.Breakdown.Equipment),
			Contingency: money(quote.Breakdown.Contingency),
			CustomItems: money(quote.Breakdown.CustomItems),
		},
	}
}

// ToStatisticsDTO converts repository aggregates to the statistics response.
// The average is 0 when there are no estimates.
func ToStatisticsDTO(stats *repository.Statistics) domain.StatisticsDTO {
	average := decimal.Zero
	if stats.Total > 0 {
		average = stats.TotalValue.Div(decimal.NewFromInt(stats.Total))
	}

	byStatus := make(map[string]int64, 4)
	for _, status := range []domain.EstimateStatus{
		domain.EstimateStatusDraft,
		domain.EstimateStatusPending,
		domain.EstimateStatusApproved,
		domain.EstimateStatusRejected,
	} {
		byStatus[string(status)] = stats.ByStatus[status]
	}

	return domain.StatisticsDTO{
		TotalEstimates: stats.Total,
		TotalValue:     money(stats.TotalValue),
		AverageCost:    money(average),
		ByStatus:       byStatus,
		ByProjectType:  stats.ByProjectType,
	}
}

// ToRowErrorDTOs converts ingest row errors to their response form
func ToRowErrorDTOs(rowErrors []ingest.RowError) []domain.RowErrorDTO {
	if len(rowErrors) == 0 {
		return nil
	}
	out := make([]domain.RowErrorDTO, 0, len(rowErrors))
	for _, re := range rowErrors {
		out = append(out, domain.RowErrorDTO{Row: re.Row, Message: re.Message})
	}
	return out
}

// Timestamp formats a time in the API's wire format
func Timestamp(t time.Time) string {
	return t.Format(timeFormat)
}
