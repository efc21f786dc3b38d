package domain

import (
	"github.com/google/uuid"
)

// Request and response bodies for the estimation API. Money values travel as
// decimal strings with two fraction digits; parsing and rounding happen at
// this boundary only.

type EstimateItemRequest struct {
	Category    string `json:"category" validate:"required,oneof=material labor equipment overhead other"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Quantity    string `json:"quantity" validate:"required"`
	Unit        string `json:"unit" validate:"max=20"`
	UnitPrice   string `json:"unit_price" validate:"required"`
	Notes       string `json:"notes"`
}

type CreateEstimateRequest struct {
	ProjectName           string                `json:"project_name" validate:"required,max=200"`
	ProjectDescription    string                `json:"project_description"`
	ProjectTypeID         uint                  `json:"project_type_id" validate:"required"`
	LocationID            uint                  `json:"location_id" validate:"required"`
	TotalArea             string                `json:"total_area" validate:"required"`
	ContingencyPercentage *string               `json:"contingency_percentage,omitempty"`
	Status                string                `json:"status" validate:"omitempty,oneof=draft pending approved rejected"`
	IsPublic              bool                  `json:"is_public"`
	Items                 []EstimateItemRequest `json:"items" validate:"dive"`
}

type UpdateEstimateRequest struct {
	ProjectName           *string `json:"project_name,omitempty" validate:"omitempty,max=200"`
	ProjectDescription    *string `json:"project_description,omitempty"`
	ProjectTypeID         *uint   `json:"project_type_id,omitempty"`
	LocationID            *uint   `json:"location_id,omitempty"`
	TotalArea             *string `json:"total_area,omitempty"`
	ContingencyPercentage *string `json:"contingency_percentage,omitempty"`
	Status                *string `json:"status,omitempty" validate:"omitempty,oneof=draft pending approved rejected"`
	IsPublic              *bool   `json:"is_public,omitempty"`
}

type QuoteItemRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Quantity  string `json:"quantity" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

type CalculateCostRequest struct {
	ProjectTypeID         uint               `json:"project_type_id" validate:"required"`
	LocationID            uint               `json:"location_id" validate:"required"`
	TotalArea             string             `json:"total_area" validate:"required"`
	ContingencyPercentage *string            `json:"contingency_percentage,omitempty"`
	CustomItems           []QuoteItemRequest `json:"custom_items" validate:"dive"`
}

type ShareEstimateRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Name          string `json:"name" validate:"max=200"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=365"`
}

type AISuggestRequest struct {
	BuildingType       string `json:"building_type" validate:"required,max=200"`
	TotalArea          string `json:"total_area" validate:"required"`
	LocationName       string `json:"location_name" validate:"required,max=200"`
	ConstructionType   string `json:"construction_type" validate:"max=200"`
	ProjectDescription string `json:"project_description"`
}

type EstimateItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Quantity    string    `json:"quantity"`
	Unit        string    `json:"unit,omitempty"`
	UnitPrice   string    `json:"unit_price"`
	TotalPrice  string    `json:"total_price"`
	Notes       string    `json:"notes,omitempty"`
}

type EstimateDTO struct {
	ID                    uuid.UUID         `json:"id"`
	ProjectName           string            `json:"project_name"`
	ProjectDescription    string            `json:"project_description,omitempty"`
	ProjectType           ProjectTypeDTO    `json:"project_type"`
	Location              LocationDTO       `json:"location"`
	Source                string            `json:"source"`
	OriginalFilename      string            `json:"original_filename,omitempty"`
	TotalArea             string            `json:"total_area"`
	BaseCostPerSqm        string            `json:"base_cost_per_sqm"`
	LocationMultiplier    string            `json:"location_multiplier"`
	AdjustedCostPerSqm    string            `json:"adjusted_cost_per_sqm"`
	TotalEstimatedCost    string            `json:"total_estimated_cost"`
	ContingencyPercentage string            `json:"contingency_percentage"`
	ContingencyAmount     string            `json:"contingency_amount"`
	FinalTotalCost        string            `json:"final_total_cost"`
	Status                string            `json:"status"`
	IsPublic              bool              `json:"is_public"`
	Items                 []EstimateItemDTO `json:"items"`
	CreatedAt             string            `json:"created_at"`
	UpdatedAt             string            `json:"updated_at"`
}

// EstimateSummaryDTO is the compact list representation.
type EstimateSummaryDTO struct {
	ID                 uuid.UUID `json:"id"`
	ProjectName        string    `json:"project_name"`
	ProjectTypeName    string    `json:"project_type_name"`
	LocationName       string    `json:"location_name"`
	TotalArea          string    `json:"total_area"`
	TotalEstimatedCost string    `json:"total_estimated_cost"`
	Status             string    `json:"status"`
	Source             string    `json:"source"`
	ItemCount          int       `json:"item_count"`
	CreatedAt          string    `json:"created_at"`
}

type EstimateListResponse struct {
	Estimates []EstimateSummaryDTO `json:"estimates"`
	Total     int64                `json:"total"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"page_size"`
}

type EstimateRevisionDTO struct {
	ID                uuid.UUID `json:"id"`
	RevisionNumber    uint      `json:"revision_number"`
	ChangesSummary    string    `json:"changes_summary"`
	PreviousTotalCost string    `json:"previous_total_cost"`
	NewTotalCost      string    `json:"new_total_cost"`
	CreatedAt         string    `json:"created_at"`
}

type EstimateShareDTO struct {
	ID              uuid.UUID `json:"id"`
	EstimateID      uuid.UUID `json:"estimate_id"`
	SharedWithEmail string    `json:"shared_with_email"`
	SharedWithName  string    `json:"shared_with_name,omitempty"`
	AccessToken     string    `json:"access_token"`
	ShareURL        string    `json:"share_url"`
	ExpiresAt       string    `json:"expires_at"`
	CreatedAt       string    `json:"created_at"`
}

type ProjectTypeDTO struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Description    string `json:"description,omitempty"`
	BaseCostPerSqm string `json:"base_cost_per_sqm"`
}

type LocationDTO struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Country        string `json:"country"`
	Region         string `json:"region,omitempty"`
	City           string `json:"city,omitempty"`
	CostMultiplier string `json:"cost_multiplier"`
}

// QuoteDTO is the response of the interactive cost calculation.
type QuoteDTO struct {
	ProjectType  QuoteProjectTypeDTO `json:"project_type"`
	Location     QuoteLocationDTO    `json:"location"`
	Calculations QuoteCalculationDTO `json:"calculations"`
	Breakdown    QuoteBreakdownDTO   `json:"breakdown"`
}

type QuoteProjectTypeDTO struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	BaseCostPerSqm string `json:"base_cost_per_sqm"`
}

type QuoteLocationDTO struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	CostMultiplier string `json:"cost_multiplier"`
}

type QuoteCalculationDTO struct {
	TotalArea             string `json:"total_area"`
	BaseCostPerSqm        string `json:"base_cost_per_sqm"`
	AdjustedCostPerSqm    string `json:"adjusted_cost_per_sqm"`
	BaseTotalCost         string `json:"base_total_cost"`
	ContingencyPercentage string `json:"contingency_percentage"`
	ContingencyAmount     string `json:"contingency_amount"`
	CustomItemsTotal      string `json:"custom_items_total"`
	FinalTotalCost        string `json:"final_total_cost"`
}

type QuoteBreakdownDTO struct {
	Materials   string `json:"materials"`
	Labor       string `json:"labor"`
	Equipment   string `json:"equipment"`
	Contingency string `json:"contingency"`
	CustomItems string `json:"custom_items"`
}

// StatisticsDTO aggregates a user's estimates.
type StatisticsDTO struct {
	TotalEstimates int64            `json:"total_estimates"`
	TotalValue     string           `json:"total_value"`
	AverageCost    string           `json:"average_cost"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByProjectType  map[string]int64 `json:"by_project_type"`
}

// RowErrorDTO describes a spreadsheet row that could not be imported.
type RowErrorDTO struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// UploadResultDTO is returned after a spreadsheet import.
type UploadResultDTO struct {
	Estimate      EstimateDTO   `json:"estimate"`
	ImportedItems int           `json:"imported_items"`
	SkippedRows   []RowErrorDTO `json:"skipped_rows,omitempty"`
}

// AISuggestionDTO carries the model-generated cost analysis verbatim.
type AISuggestionDTO struct {
	CostAnalysis    map[string]any `json:"cost_analysis"`
	Breakdown       map[string]any `json:"breakdown"`
	Recommendations []string       `json:"recommendations"`
	RiskFactors     []string       `json:"risk_factors"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
