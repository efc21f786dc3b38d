package service

import (
	"context"
	"testing"

	"github.com/jengaest/estimation-api/internal/costing"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReferenceReader struct {
	projectTypes map[uint]*domain.ProjectType
	locations    map[uint]*domain.Location
}

func (f *fakeReferenceReader) GetProjectType(_ context.Context, id uint) (*domain.ProjectType, error) {
	pt, ok := f.projectTypes[id]
	if !ok {
		return nil, ErrProjectTypeNotFound
	}
	return pt, nil
}

func (f *fakeReferenceReader) GetLocation(_ context.Context, id uint) (*domain.Location, error) {
	loc, ok := f.locations[id]
	if !ok {
		return nil, ErrLocationNotFound
	}
	return loc, nil
}

func newQuoteFixture() *QuoteService {
	refs := &fakeReferenceReader{
		projectTypes: map[uint]*domain.ProjectType{
			1: {
				ID:             1,
				Name:           "Residential House",
				Category:       domain.ProjectTypeCategoryResidential,
				BaseCostPerSqm: decimal.RequireFromString("150.00"),
			},
		},
		locations: map[uint]*domain.Location{
			2: {
				ID:             2,
				Name:           "Nairobi Central",
				Country:        "KE",
				CostMultiplier: decimal.RequireFromString("1.20"),
			},
		},
	}
	return NewQuoteService(refs, zap.NewNop())
}

func TestQuoteCalculate(t *testing.T) {
	svc := newQuoteFixture()

	quote, err := svc.Calculate(context.Background(), &domain.CalculateCostRequest{
		ProjectTypeID: 1,
		LocationID:    2,
		TotalArea:     "200",
	})
	require.NoError(t, err)

	assert.Equal(t, "Residential House", quote.ProjectType.Name)
	assert.Equal(t, "Nairobi Central", quote.Location.Name)
	assert.Equal(t, "180.00", quote.Calculations.AdjustedCostPerSqm)
	assert.Equal(t, "36000.00", quote.Calculations.BaseTotalCost)
	assert.Equal(t, "10.00", quote.Calculations.ContingencyPercentage)
	assert.Equal(t, "3600.00", quote.Calculations.ContingencyAmount)
	assert.Equal(t, "0.00", quote.Calculations.CustomItemsTotal)
	assert.Equal(t, "39600.00", quote.Calculations.FinalTotalCost)
	assert.Equal(t, "21600.00", quote.Breakdown.Materials)
	assert.Equal(t, "10800.00", quote.Breakdown.Labor)
	assert.Equal(t, "3600.00", quote.Breakdown.Equipment)
}

func TestQuoteCalculateCustomItemsAndContingency(t *testing.T) {
	svc := newQuoteFixture()
	pct := "5"

	quote, err := svc.Calculate(context.Background(), &domain.CalculateCostRequest{
		ProjectTypeID:         1,
		LocationID:            2,
		TotalArea:             "100",
		ContingencyPercentage: &pct,
		CustomItems: []domain.QuoteItemRequest{
			{Name: "Borehole", Quantity: "1", UnitPrice: "2500.00"},
			{Name: "Fence posts", Quantity: "40", UnitPrice: "12.50"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "900.00", quote.Calculations.ContingencyAmount)
	assert.Equal(t, "3000.00", quote.Calculations.CustomItemsTotal)
	assert.Equal(t, "21900.00", quote.Calculations.FinalTotalCost)
	assert.Equal(t, "3000.00", quote.Breakdown.CustomItems)
}

func TestQuoteCalculateUnknownReferences(t *testing.T) {
	svc := newQuoteFixture()

	_, err := svc.Calculate(context.Background(), &domain.CalculateCostRequest{
		ProjectTypeID: 99,
		LocationID:    2,
		TotalArea:     "100",
	})
	assert.ErrorIs(t, err, ErrProjectTypeNotFound)

	_, err = svc.Calculate(context.Background(), &domain.CalculateCostRequest{
		ProjectTypeID: 1,
		LocationID:    99,
		TotalArea:     "100",
	})
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestQuoteCalculateRejectsBadInput(t *testing.T) {
	svc := newQuoteFixture()

	_, err := svc.Calculate(context.Background(), &domain.CalculateCostRequest{
		ProjectTypeID: 1,
		LocationID:    2,
		TotalArea:     "lots",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Calculate(context.Background(), &domain.CalculateCostRequest{
		ProjectTypeID: 1,
		LocationID:    2,
		TotalArea:     "0",
	})
	var invalid *costing.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "total_area", invalid.Field)
}
