package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"go.uber.org/zap"
)

// BlobArchive stores uploaded spreadsheets in an Azure Blob Storage
// container, one blob per original file.
type BlobArchive struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

func NewBlobArchive(connectionString, containerName string, logger *zap.Logger) (*BlobArchive, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	_, err = client.CreateContainer(context.Background(), containerName, nil)
	if err != nil && !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	logger.Info("blob archive initialized",
		zap.String("container", containerName),
	)

	return &BlobArchive{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

// Store uploads the spreadsheet and returns the blob name it was
// archived under.
func (a *BlobArchive) Store(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error) {
	blobName := archiveName(time.Now(), filename)

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	reader := &countingReader{r: data}
	if _, err := a.client.UploadStream(ctx, a.containerName, blobName, reader, opts); err != nil {
		return "", 0, fmt.Errorf("failed to upload blob: %w", err)
	}

	a.logger.Info("spreadsheet archived",
		zap.String("blob_name", blobName),
		zap.String("original_filename", filename),
		zap.Int64("size", reader.count),
	)

	return blobName, reader.count, nil
}

func (a *BlobArchive) Open(ctx context.Context, archivePath string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, a.containerName, archivePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return resp.Body, nil
}

func (a *BlobArchive) Remove(ctx context.Context, archivePath string) error {
	_, err := a.client.DeleteBlob(ctx, a.containerName, archivePath, nil)
	if err != nil {
		if strings.Contains(err.Error(), "BlobNotFound") {
			return nil
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// countingReader tracks bytes read so Store can report the archived size
// without buffering the stream.
type countingReader struct {
	r     io.Reader
	count int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}
