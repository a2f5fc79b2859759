package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/amzmarine/crm/internal/crm/model"
)

// MaxAttachmentSize is the largest accepted document attachment.
const MaxAttachmentSize = 20 << 20

var (
	// ErrTooLarge is returned for attachments over MaxAttachmentSize.
	ErrTooLarge = errors.New("attachment too large")
	// ErrUnsupportedType is returned for content types outside allowedTypes.
	ErrUnsupportedType = errors.New("unsupported attachment type")
)

var allowedTypes = map[string]bool{
	"application/pdf":          true,
	"application/msword":       true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
	"image/jpeg":               true,
	"image/png":                true,
	"image/tiff":               true,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// DocumentMarker records an uploaded attachment on a shipment document.
type DocumentMarker interface {
	MarkDocumentUploaded(ctx context.Context, shipmentID, docID string, attachment model.Attachment) (bool, error)
}

// UploadService stores shipment document attachments through a StorageDriver.
type UploadService struct {
	Driver StorageDriver
}

func NewUploadService(driver StorageDriver) *UploadService {
	return &UploadService{Driver: driver}
}

// Upload stores the file under a fresh key and returns its attachment metadata.
func (s *UploadService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, mimeType string) (*model.Attachment, error) {
	if size > MaxAttachmentSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	mimeType = normalizeMimeType(mimeType)
	if !allowedTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if err := s.Driver.Save(ctx, key, io.LimitReader(reader, MaxAttachmentSize), mimeType); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.Driver.GenerateURL(ctx, key, 0)
	if err != nil {
		s.cleanup(ctx, key)
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	slog.InfoContext(ctx, "attachment stored", "key", key, "size", size, "mimeType", mimeType)
	return &model.Attachment{
		Key:      key,
		URL:      url,
		Name:     filepath.Base(filename),
		Size:     size,
		MimeType: mimeType,
	}, nil
}

// AttachToDocument uploads the file and marks the shipment document Pending.
// The stored object is removed again when the document is unknown or the
// shipment cannot be updated.
func (s *UploadService) AttachToDocument(ctx context.Context, marker DocumentMarker, shipmentID, docID, filename string, reader io.Reader, size int64, mimeType string) (*model.Attachment, error) {
	attachment, err := s.Upload(ctx, filename, reader, size, mimeType)
	if err != nil {
		return nil, err
	}

	found, err := marker.MarkDocumentUploaded(ctx, shipmentID, docID, *attachment)
	if err != nil {
		s.cleanup(ctx, attachment.Key)
		return nil, err
	}
	if !found {
		s.cleanup(ctx, attachment.Key)
		return nil, fmt.Errorf("document %s of shipment %s: %w", docID, shipmentID, model.ErrNotFound)
	}
	return attachment, nil
}

// Download retrieves the file content and its MIME type
func (s *UploadService) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.Driver.Get(ctx, key)
}

func (s *UploadService) cleanup(ctx context.Context, key string) {
	if err := s.Driver.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to cleanup orphaned file", "key", key, "error", err)
	}
}

func normalizeMimeType(value string) string {
	if value == "" {
		return "application/octet-stream"
	}
	parsed, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return parsed
}
