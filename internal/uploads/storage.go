// Package uploads stores the files attached to shipment documents.
package uploads

import (
	"context"
	"io"
	"time"
)

// StorageDriver is the blob backend holding attachment bytes under flat keys.
type StorageDriver interface {
	// Save writes body under key, replacing any previous object.
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get streams the object back with the content type it was saved with.
	// A missing key yields drivers.ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GenerateURL returns the link stored on the attachment. Drivers that
	// sign links honor expires; others ignore it.
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
