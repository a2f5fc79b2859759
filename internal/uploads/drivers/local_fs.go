package drivers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when no object has the key.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that could escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// ValidateKey rejects empty keys, path separators and dot segments.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// LocalFSDriver stores attachments on local disk under a two-level hashed
// directory layout, with the content type in a ".meta" sidecar file.
type LocalFSDriver struct {
	BaseDir   string
	PublicURL string
}

// NewLocalFSDriver creates baseDir if needed. publicURL is the prefix of the
// download links it generates, e.g. /api/uploads.
func NewLocalFSDriver(baseDir, publicURL string) (*LocalFSDriver, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalFSDriver{BaseDir: baseDir, PublicURL: strings.TrimRight(publicURL, "/")}, nil
}

// objectPath maps key "abcdef.pdf" to <base>/ab/cd/abcdef.pdf.
func (d *LocalFSDriver) objectPath(key string) string {
	if len(key) < 4 {
		return filepath.Join(d.BaseDir, key)
	}
	return filepath.Join(d.BaseDir, key[0:2], key[2:4], key)
}

// Save writes body to a temporary file and renames it into place.
func (d *LocalFSDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := d.objectPath(key)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create hashed directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.WriteFile(fullPath+".meta", []byte(contentType), 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		os.Remove(fullPath + ".meta")
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (d *LocalFSDriver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ValidateKey(key); err != nil {
		return nil, "", err
	}
	fullPath := d.objectPath(key)
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", key, err)
	}

	contentType := "application/octet-stream"
	if meta, err := os.ReadFile(fullPath + ".meta"); err == nil && len(meta) > 0 {
		contentType = string(meta)
	}
	return f, contentType, nil
}

// Delete removes the object and its sidecar. A missing object is not an error.
func (d *LocalFSDriver) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	fullPath := d.objectPath(key)
	os.Remove(fullPath + ".meta")
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// GenerateURL returns the download link served by the API. Local links never expire.
func (d *LocalFSDriver) GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if d.PublicURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", d.PublicURL, key), nil
}
