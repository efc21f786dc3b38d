package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key so the same models work on databases
// without a uuid generation function.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// EstimateStatus represents the review status of an estimate
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusPending  EstimateStatus = "pending"
	EstimateStatusApproved EstimateStatus = "approved"
	EstimateStatusRejected EstimateStatus = "rejected"
)

func (s EstimateStatus) IsValid() bool {
	switch s {
	case EstimateStatusDraft, EstimateStatusPending, EstimateStatusApproved, EstimateStatusRejected:
		return true
	}
	return false
}

// EstimateSource records how an estimate entered the system
type EstimateSource string

const (
	EstimateSourceManual EstimateSource = "manual"
	EstimateSourceUpload EstimateSource = "upload"
)

// ItemCategory classifies a cost line within an estimate
type ItemCategory string

const (
	ItemCategoryMaterial  ItemCategory = "material"
	ItemCategoryLabor     ItemCategory = "labor"
	ItemCategoryEquipment ItemCategory = "equipment"
	ItemCategoryOverhead  ItemCategory = "overhead"
	ItemCategoryOther     ItemCategory = "other"
)

func (c ItemCategory) IsValid() bool {
	switch c {
	case ItemCategoryMaterial, ItemCategoryLabor, ItemCategoryEquipment, ItemCategoryOverhead, ItemCategoryOther:
		return true
	}
	return false
}

// ProjectTypeCategory groups project types for filtering
type ProjectTypeCategory string

const (
	ProjectTypeCategoryResidential    ProjectTypeCategory = "residential"
	ProjectTypeCategoryCommercial     ProjectTypeCategory = "commercial"
	ProjectTypeCategoryIndustrial     ProjectTypeCategory = "industrial"
	ProjectTypeCategoryInfrastructure ProjectTypeCategory = "infrastructure"
)

// User represents an authenticated account. Accounts are provisioned
// externally; this service only reads them.
type User struct {
	BaseModel
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string         `gorm:"type:varchar(100)" json:"last_name"`
	Roles     pq.StringArray `gorm:"type:text[]" json:"roles"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
}

func (User) TableName() string { return "users" }

// ProjectType is a catalog entry carrying the base rate for a kind of
// construction project.
type ProjectType struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	Name           string              `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Category       ProjectTypeCategory `gorm:"type:varchar(50);not null" json:"category"`
	Description    string              `gorm:"type:text" json:"description"`
	BaseCostPerSqm decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"base_cost_per_sqm"`
	IsActive       bool                `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ProjectType) TableName() string { return "project_types" }

// Location is a catalog entry carrying the regional cost multiplier.
type Location struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Country        string          `gorm:"type:varchar(2);not null" json:"country"`
	Region         string          `gorm:"type:varchar(100)" json:"region"`
	City           string          `gorm:"type:varchar(100)" json:"city"`
	CostMultiplier decimal.Decimal `gorm:"type:numeric(5,2);not null;default:1.00" json:"cost_multiplier"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Location) TableName() string { return "locations" }

// Estimate is a construction cost estimate. The derived money fields
// (adjusted cost, total, contingency amount) are recomputed on every save
// and never trusted from input.
type Estimate struct {
	BaseModel
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User        `gorm:"foreignKey:UserID" json:"-"`
	ProjectTypeID uint         `gorm:"not null;index" json:"project_type_id"`
	ProjectType   *ProjectType `gorm:"foreignKey:ProjectTypeID" json:"project_type,omitempty"`
	LocationID    uint         `gorm:"not null;index" json:"location_id"`
	Location      *Location    `gorm:"foreignKey:LocationID" json:"location,omitempty"`

	Source           EstimateSource `gorm:"type:varchar(20);not null;default:'manual'" json:"source"`
	OriginalFilename string         `gorm:"type:varchar(255)" json:"original_filename,omitempty"`
	ArchivePath      string         `gorm:"type:varchar(512)" json:"-"`

	ProjectName        string          `gorm:"type:varchar(200);not null" json:"project_name"`
	ProjectDescription string          `gorm:"type:text" json:"project_description"`
	TotalArea          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_area"`

	BaseCostPerSqm     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"base_cost_per_sqm"`
	LocationMultiplier decimal.Decimal `gorm:"type:numeric(5,2);not null;default:1.00" json:"location_multiplier"`
	AdjustedCostPerSqm decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"adjusted_cost_per_sqm"`
	TotalEstimatedCost decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"total_estimated_cost"`

	ContingencyPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:10.00" json:"contingency_percentage"`
	ContingencyAmount     decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"contingency_amount"`

	Status   EstimateStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IsPublic bool           `gorm:"not null;default:false" json:"is_public"`

	Items     []EstimateItem     `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Revisions []EstimateRevision `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Estimate) TableName() string { return "estimates" }

// BeforeSave recomputes the derived cost fields from the independent ones.
func (e *Estimate) BeforeSave(_ *gorm.DB) error {
	e.AdjustedCostPerSqm = e.BaseCostPerSqm.Mul(e.LocationMultiplier)
	e.TotalEstimatedCost = e.AdjustedCostPerSqm.Mul(e.TotalArea)
	e.ContingencyAmount = e.TotalEstimatedCost.Mul(e.ContingencyPercentage).Div(decimal.NewFromInt(100))
	return nil
}

// EstimateItem is a single cost line belonging to an estimate.
type EstimateItem struct {
	BaseModel
	EstimateID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"estimate_id"`
	Category    ItemCategory    `gorm:"type:varchar(20);not null" json:"category"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"total_price"`
	Notes       string          `gorm:"type:text" json:"notes"`
}

func (EstimateItem) TableName() string { return "estimate_items" }

// BeforeSave keeps the line total consistent with quantity and unit price.
func (i *EstimateItem) BeforeSave(_ *gorm.DB) error {
	i.TotalPrice = i.Quantity.Mul(i.UnitPrice)
	return nil
}

// EstimateRevision records a change to an estimate's total cost.
type EstimateRevision struct {
	BaseModel
	EstimateID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_estimate_revision" json:"estimate_id"`
	RevisionNumber    uint            `gorm:"not null;uniqueIndex:idx_estimate_revision" json:"revision_number"`
	ChangesSummary    string          `gorm:"type:text;not null" json:"changes_summary"`
	PreviousTotalCost decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"previous_total_cost"`
	NewTotalCost      decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"new_total_cost"`
	CreatedByID       uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
}

func (EstimateRevision) TableName() string { return "estimate_revisions" }

// EstimateShare grants read access to an estimate via an opaque token.
type EstimateShare struct {
	BaseModel
	EstimateID      uuid.UUID `gorm:"type:uuid;not null;index" json:"estimate_id"`
	Estimate        *Estimate `gorm:"foreignKey:EstimateID" json:"-"`
	SharedWithEmail string    `gorm:"type:varchar(255);not null" json:"shared_with_email"`
	SharedWithName  string    `gorm:"type:varchar(200)" json:"shared_with_name"`
	AccessToken     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"-"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt       time.Time `gorm:"not null" json:"expires_at"`
	CreatedByID     uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
}

func (EstimateShare) TableName() string { return "estimate_shares" }

// Expired reports whether the share can no longer be used.
func (s *EstimateShare) Expired(now time.Time) bool {
	return !s.IsActive || now.After(s.ExpiresAt)
}
