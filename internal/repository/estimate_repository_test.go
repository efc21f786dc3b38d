package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an isolated in-memory database per test. The users table
// is skipped because its array column is postgres-only and nothing here
// touches it.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.ProjectType{},
		&domain.Location{},
		&domain.Estimate{},
		&domain.EstimateItem{},
		&domain.EstimateRevision{},
		&domain.EstimateShare{},
	))
	return db
}

func seedReferences(t *testing.T, db *gorm.DB) (*domain.ProjectType, *domain.Location) {
	t.Helper()

	pt := &domain.ProjectType{
		Name:           "Residential House",
		Category:       domain.ProjectTypeCategoryResidential,
		BaseCostPerSqm: decimal.RequireFromString("180.00"),
		IsActive:       true,
	}
	require.NoError(t, db.Create(pt).Error)

	loc := &domain.Location{
		Name:           "Nairobi Central",
		Country:        "KE",
		CostMultiplier: decimal.RequireFromString("1.20"),
		IsActive:       true,
	}
	require.NoError(t, db.Create(loc).Error)
	return pt, loc
}

func newEstimate(userID uuid.UUID, pt *domain.ProjectType, loc *domain.Location, name string) *domain.Estimate {
	return &domain.Estimate{
		UserID:                userID,
		ProjectTypeID:         pt.ID,
		LocationID:            loc.ID,
		Source:                domain.EstimateSourceManual,
		ProjectName:           name,
		TotalArea:             decimal.RequireFromString("100"),
		BaseCostPerSqm:        pt.BaseCostPerSqm,
		LocationMultiplier:    loc.CostMultiplier,
		ContingencyPercentage: decimal.RequireFromString("10.00"),
		Status:                domain.EstimateStatusDraft,
	}
}

func TestEstimateCreateComputesDerivedFields(t *testing.T) {
	db := testDB(t)
	pt, loc := seedReferences(t, db)
	repo := NewEstimateRepository(db)
	ctx := context.Background()

	estimate := newEstimate(uuid.New(), pt, loc, "Lakeside Villa")
	estimate.Items = []domain.EstimateItem{
		{
			Category:  domain.ItemCategoryMaterial,
			Name:      "Cement",
			Quantity:  decimal.RequireFromString("100"),
			UnitPrice: decimal.RequireFromString("8.50"),
		},
	}
	require.NoError(t, repo.Create(ctx, estimate))

	loaded, err := repo.GetByID(ctx, estimate.ID)
	require.NoError(t, err)

	assert.True(t, loaded.AdjustedCostPerSqm.Equal(decimal.RequireFromString("216")), "adjusted: %s", loaded.AdjustedCostPerSqm)
	assert.True(t, loaded.TotalEstimatedCost.Equal(decimal.RequireFromString("21600")))
	assert.True(t, loaded.ContingencyAmount.Equal(decimal.RequireFromString("2160")))
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Items[0].TotalPrice.Equal(decimal.RequireFromString("850")))
	require.NotNil(t, loaded.ProjectType)
	assert.Equal(t, "Residential House", loaded.ProjectType.Name)
}

func TestEstimateListFiltersAndPaginates(t *testing.T) {
	db := testDB(t)
	pt, loc := seedReferences(t, db)
	repo := NewEstimateRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		e := newEstimate(userID, pt, loc, "Mine")
		require.NoError(t, repo.Create(ctx, e))
	}
	approved := newEstimate(userID, pt, loc, "Approved one")
	approved.Status = domain.EstimateStatusApproved
	require.NoError(t, repo.Create(ctx, approved))

	other := newEstimate(uuid.New(), pt, loc, "Someone else's")
	require.NoError(t, repo.Create(ctx, other))

	estimates, total, err := repo.List(ctx, ListFilter{UserID: userID}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, estimates, 2)

	status := domain.EstimateStatusApproved
	estimates, total, err = repo.List(ctx, ListFilter{UserID: userID, Status: &status}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, estimates, 1)
	assert.Equal(t, "Approved one", estimates[0].ProjectName)

	// Search matches the project name case-insensitively
	estimates, total, err = repo.List(ctx, ListFilter{UserID: userID, Search: "APPROVED"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, estimates, 1)
	assert.Equal(t, "Approved one", estimates[0].ProjectName)

	// A zero UserID lists across owners
	all, err := repo.ListAll(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestEstimateStatistics(t *testing.T) {
	db := testDB(t)
	pt, loc := seedReferences(t, db)
	repo := NewEstimateRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	draft := newEstimate(userID, pt, loc, "Draft")
	require.NoError(t, repo.Create(ctx, draft))
	approved := newEstimate(userID, pt, loc, "Approved")
	approved.Status = domain.EstimateStatusApproved
	require.NoError(t, repo.Create(ctx, approved))

	stats, err := repo.Statistics(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Total)
	// Each estimate totals 21600.00
	assert.True(t, stats.TotalValue.Equal(decimal.RequireFromString("43200")), "total value: %s", stats.TotalValue)
	assert.Equal(t, int64(1), stats.ByStatus[domain.EstimateStatusDraft])
	assert.Equal(t, int64(1), stats.ByStatus[domain.EstimateStatusApproved])
	assert.Equal(t, int64(2), stats.ByProjectType["Residential House"])
}

func TestEstimateStatisticsEmpty(t *testing.T) {
	db := testDB(t)
	seedReferences(t, db)
	repo := NewEstimateRepository(db)

	stats, err := repo.Statistics(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
	assert.True(t, stats.TotalValue.IsZero())
}

func TestRevisionNumbering(t *testing.T) {
	db := testDB(t)
	pt, loc := seedReferences(t, db)
	estimateRepo := NewEstimateRepository(db)
	revisionRepo := NewRevisionRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	estimate := newEstimate(userID, pt, loc, "Versioned")
	require.NoError(t, estimateRepo.Create(ctx, estimate))

	first, err := revisionRepo.NextRevisionNumber(ctx, estimate.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	require.NoError(t, revisionRepo.Create(ctx, &domain.EstimateRevision{
		EstimateID:        estimate.ID,
		RevisionNumber:    first,
		ChangesSummary:    "Updated: total_area",
		PreviousTotalCost: decimal.RequireFromString("21600"),
		NewTotalCost:      decimal.RequireFromString("25000"),
		CreatedByID:       userID,
	}))

	next, err := revisionRepo.NextRevisionNumber(ctx, estimate.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	revisions, err := revisionRepo.ListByEstimate(ctx, estimate.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "Updated: total_area", revisions[0].ChangesSummary)
}

func TestShareLifecycle(t *testing.T) {
	db := testDB(t)
	pt, loc := seedReferences(t, db)
	estimateRepo := NewEstimateRepository(db)
	shareRepo := NewShareRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	estimate := newEstimate(userID, pt, loc, "Shared")
	require.NoError(t, estimateRepo.Create(ctx, estimate))

	now := time.Now().UTC()
	active := &domain.EstimateShare{
		EstimateID:      estimate.ID,
		SharedWithEmail: "client@example.com",
		AccessToken:     uuid.New().String(),
		IsActive:        true,
		ExpiresAt:       now.Add(24 * time.Hour),
		CreatedByID:     userID,
	}
	require.NoError(t, shareRepo.Create(ctx, active))

	stale := &domain.EstimateShare{
		EstimateID:      estimate.ID,
		SharedWithEmail: "old@example.com",
		AccessToken:     uuid.New().String(),
		IsActive:        true,
		ExpiresAt:       now.Add(-time.Hour),
		CreatedByID:     userID,
	}
	require.NoError(t, shareRepo.Create(ctx, stale))

	loaded, err := shareRepo.GetByToken(ctx, active.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, loaded.Estimate)
	assert.Equal(t, "Shared", loaded.Estimate.ProjectName)

	swept, err := shareRepo.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	reloaded, err := shareRepo.GetByToken(ctx, stale.AccessToken)
	require.NoError(t, err)
	assert.True(t, reloaded.Expired(now))
}

func TestReferenceResolve(t *testing.T) {
	db := testDB(t)
	pt, _ := seedReferences(t, db)
	repo := NewProjectTypeRepository(db)
	ctx := context.Background()

	byName, err := repo.Resolve(ctx, "  residential house ")
	require.NoError(t, err)
	assert.Equal(t, pt.ID, byName.ID)

	byID, err := repo.Resolve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, pt.ID, byID.ID)

	_, err = repo.Resolve(ctx, "Space Station")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
