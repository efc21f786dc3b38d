package ingest

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetSpec struct {
	name string
	rows [][]any
}

func buildWorkbook(t *testing.T, sheets ...sheetSpec) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell := fmt.Sprintf("A%d", r+1)
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func metadataHeader() []any {
	return []any{"project_name", "project_type", "location", "total_area", "base_cost_per_sqm"}
}

func TestParseEstimateAndItemsSheets(t *testing.T) {
	wb := buildWorkbook(t,
		sheetSpec{
			name: "Estimate",
			rows: [][]any{
				{"project_name", "project_type", "location", "total_area", "base_cost_per_sqm", "contingency_percentage"},
				{"Riverside Mall", "Commercial Building", "Nairobi Central", "450.5", "250.00", "12.5"},
			},
		},
		sheetSpec{
			name: "Items",
			rows: [][]any{
				{"name", "category", "quantity", "unit", "unit_price", "notes"},
				{"Cement", "material", "120", "bag", "8.50", "grade 42.5"},
				{"Site crew", "labor", "30", "day", "45.00", ""},
			},
		},
	)

	doc, err := Parse(wb)
	require.NoError(t, err)

	assert.Equal(t, "Riverside Mall", doc.Metadata.ProjectName)
	assert.Equal(t, "Commercial Building", doc.Metadata.ProjectType)
	assert.Equal(t, "Nairobi Central", doc.Metadata.Location)
	assert.Equal(t, "450.5", doc.Metadata.TotalArea.String())
	assert.Equal(t, "250", doc.Metadata.BaseCostPerSqm.String())
	assert.Equal(t, "12.5", doc.Metadata.ContingencyPercentage.String())
	// not supplied, so the default applies
	assert.Equal(t, "1", doc.Metadata.LocationMultiplier.String())

	require.Len(t, doc.Items, 2)
	assert.Empty(t, doc.RowErrors)
	assert.Equal(t, "Cement", doc.Items[0].Name)
	assert.Equal(t, "material", doc.Items[0].Category)
	assert.Equal(t, "bag", doc.Items[0].Unit)
	assert.Equal(t, "8.5", doc.Items[0].UnitPrice.String())
	assert.Equal(t, "Site crew", doc.Items[1].Name)
	assert.Equal(t, "labor", doc.Items[1].Category)
}

func TestParseSingleSheetWithLeftoverItems(t *testing.T) {
	wb := buildWorkbook(t, sheetSpec{
		name: "Upload",
		rows: [][]any{
			{"Project Name", "project_type", "location", "total_area", "base_cost_per_sqm", "name", "quantity", "unit_price"},
			{"Warehouse Annex", "1", "2", "300", "150.00", "", "", ""},
			{"", "", "", "", "", "Steel beams", "12", "900.00"},
			{"", "", "", "", "", "Roofing sheets", "80", "35.50"},
		},
	})

	doc, err := Parse(wb)
	require.NoError(t, err)

	assert.Equal(t, "Warehouse Annex", doc.Metadata.ProjectName)
	assert.Equal(t, "1", doc.Metadata.ProjectType)

	require.Len(t, doc.Items, 2)
	assert.Empty(t, doc.RowErrors)
	assert.Equal(t, "Steel beams", doc.Items[0].Name)
	assert.Equal(t, 3, doc.Items[0].Row)
	assert.Equal(t, "Roofing sheets", doc.Items[1].Name)
	assert.Equal(t, 4, doc.Items[1].Row)
}

func TestParseSecondSheetItemsFallback(t *testing.T) {
	wb := buildWorkbook(t,
		sheetSpec{
			name: "Estimate",
			rows: [][]any{
				metadataHeader(),
				{"Clinic Block", "Residential House", "Kampala Central", "120", "180.00"},
			},
		},
		sheetSpec{
			name: "Materials",
			rows: [][]any{
				{"name", "quantity", "unit_price"},
				{"Bricks", "5000", "0.45"},
			},
		},
	)

	doc, err := Parse(wb)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Bricks", doc.Items[0].Name)
	// no category column, defaulted
	assert.Equal(t, "other", doc.Items[0].Category)
}

func TestParseZeroItemsIsValid(t *testing.T) {
	wb := buildWorkbook(t, sheetSpec{
		name: "Estimate",
		rows: [][]any{
			metadataHeader(),
			{"Empty Project", "Residential House", "Nairobi Central", "100", "180.00"},
		},
	})

	doc, err := Parse(wb)
	require.NoError(t, err)
	assert.Empty(t, doc.Items)
	assert.Empty(t, doc.RowErrors)
}

func TestParseUnrecognizedFormat(t *testing.T) {
	wb := buildWorkbook(t, sheetSpec{
		name: "Data",
		rows: [][]any{
			{"foo", "bar"},
			{"1", "2"},
		},
	})

	_, err := Parse(wb)
	var unrecognized *UnrecognizedFormatError
	require.ErrorAs(t, err, &unrecognized)
}

func TestParseNotASpreadsheet(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("definitely not xlsx")))
	var unrecognized *UnrecognizedFormatError
	require.ErrorAs(t, err, &unrecognized)
}

func TestParseMissingFieldsReportedTogether(t *testing.T) {
	wb := buildWorkbook(t, sheetSpec{
		name: "Estimate",
		rows: [][]any{
			{"project_name", "project_type", "location"},
			{"Half Filled", "Residential House", "Nairobi Central"},
		},
	})

	_, err := Parse(wb)
	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Fields, "total_area")
	assert.Contains(t, missing.Fields, "base_cost_per_sqm")
	assert.Len(t, missing.Fields, 2)
}

func TestParseNonNumericMetadata(t *testing.T) {
	wb := buildWorkbook(t, sheetSpec{
		name: "Estimate",
		rows: [][]any{
			metadataHeader(),
			{"Bad Numbers", "Residential House", "Nairobi Central", "lots", "180.00"},
		},
	})

	_, err := Parse(wb)
	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "not a number", missing.Fields["total_area"])
}

func TestParseItemRowErrorsDoNotAbortBatch(t *testing.T) {
	wb := buildWorkbook(t,
		sheetSpec{
			name: "Estimate",
			rows: [][]any{
				metadataHeader(),
				{"Partial Import", "Residential House", "Nairobi Central", "200", "150.00"},
			},
		},
		sheetSpec{
			name: "Items",
			rows: [][]any{
				{"name", "category", "quantity", "unit_price"},
				{"Cement", "material", "ten", "8.50"},
				{"Sand", "material", "40", "3.00"},
				{"", "labor", "5", "45.00"},
			},
		},
	)

	doc, err := Parse(wb)
	require.NoError(t, err)

	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Sand", doc.Items[0].Name)

	require.Len(t, doc.RowErrors, 2)
	assert.Equal(t, 2, doc.RowErrors[0].Row)
	assert.Contains(t, doc.RowErrors[0].Message, "quantity")
	assert.Equal(t, 4, doc.RowErrors[1].Row)
	assert.Contains(t, doc.RowErrors[1].Message, "name")
}

func TestParseNegativeAmountsAreRowErrors(t *testing.T) {
	wb := buildWorkbook(t,
		sheetSpec{
			name: "Estimate",
			rows: [][]any{
				metadataHeader(),
				{"Negative Amounts", "Residential House", "Nairobi Central", "200", "150.00"},
			},
		},
		sheetSpec{
			name: "Items",
			rows: [][]any{
				{"name", "category", "quantity", "unit_price"},
				{"Refund line", "material", "-5", "8.50"},
				{"Discount", "other", "1", "-8.50"},
				{"Sand", "material", "40", "3.00"},
			},
		},
	)

	doc, err := Parse(wb)
	require.NoError(t, err)

	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Sand", doc.Items[0].Name)

	require.Len(t, doc.RowErrors, 2)
	assert.Equal(t, 2, doc.RowErrors[0].Row)
	assert.Equal(t, "quantity must not be negative", doc.RowErrors[0].Message)
	assert.Equal(t, 3, doc.RowErrors[1].Row)
	assert.Equal(t, "unit_price must not be negative", doc.RowErrors[1].Message)
}

func TestParseEmptyAmountsDefaultToZero(t *testing.T) {
	wb := buildWorkbook(t,
		sheetSpec{
			name: "Estimate",
			rows: [][]any{
				metadataHeader(),
				{"Zero Amounts", "Residential House", "Nairobi Central", "100", "150.00"},
			},
		},
		sheetSpec{
			name: "Items",
			rows: [][]any{
				{"name", "category", "quantity", "unit_price"},
				{"Provisional sum", "other", "", ""},
			},
		},
	)

	doc, err := Parse(wb)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.True(t, doc.Items[0].Quantity.IsZero())
	assert.True(t, doc.Items[0].UnitPrice.IsZero())
	assert.Empty(t, doc.RowErrors)
}
