package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/ingest"
	"github.com/jengaest/estimation-api/internal/mapper"
	"github.com/jengaest/estimation-api/internal/storage"
	"go.uber.org/zap"
)

// referenceResolver resolves the project type and location references a
// spreadsheet names, by numeric id or by name.
type referenceResolver interface {
	ResolveProjectType(ctx context.Context, idOrName string) (*domain.ProjectType, error)
	ResolveLocation(ctx context.Context, idOrName string) (*domain.Location, error)
}

// estimateWriter is the slice of persistence the upload flow needs.
type estimateWriter interface {
	Create(ctx context.Context, estimate *domain.Estimate) error
}

// UploadService turns uploaded spreadsheets into estimates. Parsing is
// delegated to the ingest package; this service resolves references,
// persists the result, and archives the original file.
type UploadService struct {
	estimates estimateWriter
	refs      referenceResolver
	archive   storage.Archive
	logger    *zap.Logger
}

func NewUploadService(estimates estimateWriter, refs referenceResolver, archive storage.Archive, logger *zap.Logger) *UploadService {
	return &UploadService{
		estimates: estimates,
		refs:      refs,
		archive:   archive,
		logger:    logger,
	}
}

// Process parses the spreadsheet and creates an estimate from it.
//
// Parse and reference errors abort the whole upload before anything is
// persisted. Row-level item problems do not: the estimate is created
// with the rows that survived and the failures are reported back.
func (s *UploadService) Process(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*domain.UploadResultDTO, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	doc, err := ingest.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	projectType, err := s.refs.ResolveProjectType(ctx, doc.Metadata.ProjectType)
	if err != nil {
		if errors.Is(err, ErrProjectTypeNotFound) {
			return nil, &ingest.UnresolvedReferenceError{Field: "project_type", Value: doc.Metadata.ProjectType}
		}
		return nil, err
	}
	location, err := s.refs.ResolveLocation(ctx, doc.Metadata.Location)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return nil, &ingest.UnresolvedReferenceError{Field: "location", Value: doc.Metadata.Location}
		}
		return nil, err
	}

	estimate := &domain.Estimate{
		UserID:                userID,
		ProjectTypeID:         projectType.ID,
		LocationID:            location.ID,
		Source:                domain.EstimateSourceUpload,
		OriginalFilename:      filename,
		ProjectName:           doc.Metadata.ProjectName,
		ProjectDescription:    doc.Metadata.ProjectDescription,
		TotalArea:             doc.Metadata.TotalArea,
		BaseCostPerSqm:        doc.Metadata.BaseCostPerSqm,
		LocationMultiplier:    doc.Metadata.LocationMultiplier,
		ContingencyPercentage: doc.Metadata.ContingencyPercentage,
		Status:                domain.EstimateStatusDraft,
	}
	for _, item := range doc.Items {
		estimate.Items = append(estimate.Items, domain.EstimateItem{
			Category:    domain.ItemCategory(item.Category),
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Notes:       item.Notes,
		})
	}

	// Archive before persisting so the stored path lands on the row.
	// A dead archive backend should not block the import itself.
	if s.archive != nil {
		archivePath, size, err := s.archive.Store(ctx, filename, xlsxContentType, bytes.NewReader(data))
		if err != nil {
			s.logger.Warn("failed to archive uploaded spreadsheet",
				zap.String("filename", filename),
				zap.Error(err),
			)
		} else {
			estimate.ArchivePath = archivePath
			s.logger.Debug("uploaded spreadsheet archived",
				zap.String("archive_path", archivePath),
				zap.Int64("size", size),
			)
		}
	}

	if err := s.estimates.Create(ctx, estimate); err != nil {
		return nil, fmt.Errorf("creating estimate from upload: %w", err)
	}

	s.logger.Info("spreadsheet imported",
		zap.String("estimate_id", estimate.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("filename", filename),
		zap.Int("imported_items", len(estimate.Items)),
		zap.Int("skipped_rows", len(doc.RowErrors)),
	)

	estimate.ProjectType = projectType
	estimate.Location = location
	return &domain.UploadResultDTO{
		Estimate:      mapper.ToEstimateDTO(estimate),
		ImportedItems: len(estimate.Items),
		SkippedRows:   mapper.ToRowErrorDTOs(doc.RowErrors),
	}, nil
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
