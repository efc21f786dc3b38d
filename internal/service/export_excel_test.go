package service

import (
	"bytes"
	"testing"

	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/ingest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportedWorkbookRoundTrips(t *testing.T) {
	estimate := &domain.Estimate{
		ProjectName:           "Lakeside Villa",
		ProjectDescription:    "Two-storey residence",
		TotalArea:             decimal.RequireFromString("240"),
		BaseCostPerSqm:        decimal.RequireFromString("150.00"),
		LocationMultiplier:    decimal.RequireFromString("1.20"),
		ContingencyPercentage: decimal.RequireFromString("10.00"),
		ProjectType:           &domain.ProjectType{ID: 1, Name: "Residential House"},
		Location:              &domain.Location{ID: 2, Name: "Nairobi Central"},
		Items: []domain.EstimateItem{
			{
				Category:  domain.ItemCategoryMaterial,
				Name:      "Cement",
				Quantity:  decimal.RequireFromString("100"),
				Unit:      "bag",
				UnitPrice: decimal.RequireFromString("8.50"),
			},
			{
				Category:  domain.ItemCategoryLabor,
				Name:      "Mason crew",
				Quantity:  decimal.RequireFromString("30"),
				Unit:      "day",
				UnitPrice: decimal.RequireFromString("40.00"),
			},
		},
	}

	data, err := buildEstimateWorkbook(estimate)
	require.NoError(t, err)

	doc, err := ingest.Parse(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "Lakeside Villa", doc.Metadata.ProjectName)
	assert.Equal(t, "Residential House", doc.Metadata.ProjectType)
	assert.Equal(t, "Nairobi Central", doc.Metadata.Location)
	assert.True(t, doc.Metadata.TotalArea.Equal(decimal.RequireFromString("240")))
	assert.True(t, doc.Metadata.LocationMultiplier.Equal(decimal.RequireFromString("1.2")))

	require.Len(t, doc.Items, 2)
	assert.Empty(t, doc.RowErrors)
	assert.Equal(t, "Cement", doc.Items[0].Name)
	assert.Equal(t, "material", doc.Items[0].Category)
	assert.True(t, doc.Items[1].UnitPrice.Equal(decimal.RequireFromString("40")))
}

func TestBuildWorkbookWithoutItems(t *testing.T) {
	estimate := &domain.Estimate{
		ProjectName:           "Bare Plot Survey",
		TotalArea:             decimal.RequireFromString("50"),
		BaseCostPerSqm:        decimal.RequireFromString("80.00"),
		LocationMultiplier:    decimal.RequireFromString("1.00"),
		ContingencyPercentage: decimal.RequireFromString("10.00"),
		ProjectType:           &domain.ProjectType{ID: 3, Name: "Perimeter Wall"},
		Location:              &domain.Location{ID: 2, Name: "Kampala Central"},
	}

	data, err := buildEstimateWorkbook(estimate)
	require.NoError(t, err)

	doc, err := ingest.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, doc.Items)
	assert.Equal(t, "Bare Plot Survey", doc.Metadata.ProjectName)
}
