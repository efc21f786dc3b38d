package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeEstimateWriter struct {
	created *domain.Estimate
	err     error
}

func (f *fakeEstimateWriter) Create(_ context.Context, estimate *domain.Estimate) error {
	if f.err != nil {
		return f.err
	}
	estimate.ID = uuid.New()
	f.created = estimate
	return nil
}

type fakeResolver struct {
	projectTypes map[string]*domain.ProjectType
	locations    map[string]*domain.Location
}

func (f *fakeResolver) ResolveProjectType(_ context.Context, idOrName string) (*domain.ProjectType, error) {
	pt, ok := f.projectTypes[strings.ToLower(strings.TrimSpace(idOrName))]
	if !ok {
		return nil, ErrProjectTypeNotFound
	}
	return pt, nil
}

func (f *fakeResolver) ResolveLocation(_ context.Context, idOrName string) (*domain.Location, error) {
	loc, ok := f.locations[strings.ToLower(strings.TrimSpace(idOrName))]
	if !ok {
		return nil, ErrLocationNotFound
	}
	return loc, nil
}

func uploadWorkbook(t *testing.T, metadataRow []any, itemRows [][]any) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Estimate"))
	header := []any{"Project Name", "Project Type", "Location", "Total Area", "Base Cost Per Sqm"}
	require.NoError(t, f.SetSheetRow("Estimate", "A1", &header))
	require.NoError(t, f.SetSheetRow("Estimate", "A2", &metadataRow))

	_, err := f.NewSheet("Items")
	require.NoError(t, err)
	itemHeader := []any{"Name", "Category", "Quantity", "Unit Price"}
	require.NoError(t, f.SetSheetRow("Items", "A1", &itemHeader))
	for i, row := range itemRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Items", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func newUploadFixture() (*UploadService, *fakeEstimateWriter) {
	writer := &fakeEstimateWriter{}
	resolver := &fakeResolver{
		projectTypes: map[string]*domain.ProjectType{
			"residential house": {ID: 1, Name: "Residential House"},
		},
		locations: map[string]*domain.Location{
			"nairobi central": {ID: 2, Name: "Nairobi Central"},
		},
	}
	return NewUploadService(writer, resolver, nil, zap.NewNop()), writer
}

func TestUploadProcess(t *testing.T) {
	svc, writer := newUploadFixture()

	r := uploadWorkbook(t,
		[]any{"Lakeside Villa", "Residential House", "Nairobi Central", "240", "150.00"},
		[][]any{
			{"Cement", "material", "100", "8.50"},
			{"", "material", "2", "5.00"},
			{"Mason crew", "labor", "not-a-number", "40.00"},
		},
	)

	result, err := svc.Process(context.Background(), uuid.New(), "villa.xlsx", r)
	require.NoError(t, err)

	assert.Equal(t, "Lakeside Villa", result.Estimate.ProjectName)
	assert.Equal(t, 1, result.ImportedItems)
	assert.Len(t, result.SkippedRows, 1)
	assert.Equal(t, 4, result.SkippedRows[0].Row)

	require.NotNil(t, writer.created)
	assert.Equal(t, domain.EstimateSourceUpload, writer.created.Source)
	assert.Equal(t, "villa.xlsx", writer.created.OriginalFilename)
	assert.Equal(t, uint(1), writer.created.ProjectTypeID)
	assert.Equal(t, uint(2), writer.created.LocationID)
	require.Len(t, writer.created.Items, 1)
	assert.Equal(t, "Cement", writer.created.Items[0].Name)
	assert.Equal(t, domain.ItemCategoryMaterial, writer.created.Items[0].Category)
}

func TestUploadProcessUnknownProjectType(t *testing.T) {
	svc, writer := newUploadFixture()

	r := uploadWorkbook(t,
		[]any{"Lakeside Villa", "Space Station", "Nairobi Central", "240", "150.00"},
		nil,
	)

	_, err := svc.Process(context.Background(), uuid.New(), "villa.xlsx", r)

	var unresolved *ingest.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "project_type", unresolved.Field)
	assert.Equal(t, "Space Station", unresolved.Value)
	assert.Nil(t, writer.created, "nothing should persist when a reference fails")
}

func TestUploadProcessUnknownLocation(t *testing.T) {
	svc, writer := newUploadFixture()

	r := uploadWorkbook(t,
		[]any{"Lakeside Villa", "Residential House", "Atlantis", "240", "150.00"},
		nil,
	)

	_, err := svc.Process(context.Background(), uuid.New(), "villa.xlsx", r)

	var unresolved *ingest.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "location", unresolved.Field)
	assert.Nil(t, writer.created)
}

func TestUploadProcessMissingMetadata(t *testing.T) {
	svc, _ := newUploadFixture()

	r := uploadWorkbook(t,
		[]any{"Lakeside Villa", "Residential House", "Nairobi Central", "", ""},
		nil,
	)

	_, err := svc.Process(context.Background(), uuid.New(), "villa.xlsx", r)

	var missing *ingest.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Fields, 2)
}

func TestUploadProcessNotASpreadsheet(t *testing.T) {
	svc, _ := newUploadFixture()

	_, err := svc.Process(context.Background(), uuid.New(), "notes.txt", strings.NewReader("just some text"))

	var unrecognized *ingest.UnrecognizedFormatError
	require.ErrorAs(t, err, &unrecognized)
}
