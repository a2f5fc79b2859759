package drivers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalFSDriver_DirectoryHashing(t *testing.T) {
	tempDir := t.TempDir()

	driver, err := NewLocalFSDriver(tempDir, "/api/uploads/")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	ctx := context.Background()
	key := "abcdef123456.pdf"
	content := []byte("bill of lading scan")

	if err := driver.Save(ctx, key, bytes.NewReader(content), "application/pdf"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// key "abcdef123456.pdf" lives at ab/cd/abcdef123456.pdf
	fullPath := filepath.Join(tempDir, "ab", "cd", key)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		t.Errorf("file not found at hashed path: %s", fullPath)
	}

	reader, contentType, err := driver.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got, _ := io.ReadAll(reader)
	reader.Close()

	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: %q", got)
	}
	if contentType != "application/pdf" {
		t.Errorf("expected content type application/pdf, got %s", contentType)
	}

	url, err := driver.GenerateURL(ctx, key, 0)
	if err != nil {
		t.Errorf("GenerateURL failed: %v", err)
	}
	if url != "/api/uploads/"+key {
		t.Errorf("unexpected URL: %s", url)
	}

	if err := driver.Delete(ctx, key); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
		t.Error("file still exists after deletion")
	}
	if err := driver.Delete(ctx, key); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestLocalFSDriver_GetMissing(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	_, _, err = driver.Get(context.Background(), "missing.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalFSDriver_RejectsTraversal(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	for _, key := range []string{"", "..", "../../etc/passwd", `a\b`} {
		err := driver.Save(context.Background(), key, strings.NewReader("x"), "text/plain")
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestLocalFSDriver_FailedCopyLeavesNothing(t *testing.T) {
	tempDir := t.TempDir()
	driver, err := NewLocalFSDriver(tempDir, "")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	key := "deadbeef.pdf"
	err = driver.Save(context.Background(), key, io.MultiReader(strings.NewReader("part"), errReader{}), "application/pdf")
	if err == nil {
		t.Fatal("expected Save to fail")
	}

	entries, _ := os.ReadDir(filepath.Join(tempDir, "de", "ad"))
	if len(entries) != 0 {
		t.Errorf("expected no leftover files, found %d", len(entries))
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
