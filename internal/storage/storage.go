package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/config"
	"go.uber.org/zap"
)

// Archive keeps the original spreadsheets that estimates were imported
// from, so an upload can always be re-inspected or re-parsed later.
type Archive interface {
	Store(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error)
	Open(ctx context.Context, archivePath string) (io.ReadCloser, error)
	Remove(ctx context.Context, archivePath string) error
}

// NewArchive picks the backend from configuration: local filesystem for
// development, Azure Blob Storage for deployed environments.
func NewArchive(cfg *config.StorageConfig, logger *zap.Logger) (Archive, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalArchive(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewBlobArchive(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// LocalArchive stores originals under a base directory, sharded by
// upload month so a directory never grows unbounded.
type LocalArchive struct {
	basePath string
	now      func() time.Time
}

func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath, now: time.Now}, nil
}

// Store writes the spreadsheet to disk and returns its archive path.
func (a *LocalArchive) Store(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error) {
	archivePath := archiveName(a.now(), filename)
	fullPath := filepath.Join(a.basePath, archivePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return archivePath, size, nil
}

func (a *LocalArchive) Open(ctx context.Context, archivePath string) (io.ReadCloser, error) {
	fullPath := filepath.Join(a.basePath, archivePath)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", archivePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (a *LocalArchive) Remove(ctx context.Context, archivePath string) error {
	fullPath := filepath.Join(a.basePath, archivePath)

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// archiveName builds "uploads/2026/08/<uuid>.xlsx" so originals stay
// browsable by upload month and never collide on filename.
func archiveName(now time.Time, filename string) string {
	ext := filepath.Ext(filename)
	return filepath.Join("uploads", now.Format("2006"), now.Format("01"), uuid.New().String()+ext)
}
