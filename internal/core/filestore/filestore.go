// Package filestore stores offloaded payloads as opaque blobs on disk.
//
// Blobs are written under <data_dir>/blobs/ keyed by a UUIDv7 file ID, so
// directory listings sort by creation time. Writes go through a temp file
// plus rename to keep partially written blobs invisible to readers.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/solatis/shortstop/internal/types"
)

// Uploader accepts a raw payload and returns an identifier that can later
// retrieve it. Implementations must not mutate data.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (types.FileID, error)
}

// DiskStore implements Uploader backed by a local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the blobs directory under dataDir if needed.
func NewDiskStore(dataDir string) (*DiskStore, error) {
	dir := filepath.Join(dataDir, "blobs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Upload writes data to a new blob and returns its file ID.
func (s *DiskStore) Upload(ctx context.Context, data []byte) (types.FileID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := types.NewFileID()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp blob: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize blob: %w", err)
	}

	return id, nil
}

// Read returns the full contents of a previously uploaded blob.
func (s *DiskStore) Read(ctx context.Context, id types.FileID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrBlobNotFound, id)
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Delete removes a blob. Missing blobs are not an error: deletes run after
// the owning database row is gone and must be safe to retry.
func (s *DiskStore) Delete(ctx context.Context, id types.FileID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Prune removes blobs older than cutoff and reports how many were deleted.
// Blob age comes from the timestamp embedded in the UUIDv7 file ID, so
// retention needs no database lookup. Files that do not parse as file IDs
// (in-flight temp files, strays) are left alone.
func (s *DiskStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list blobs: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() {
			continue
		}
		id, err := types.ParseFileID(entry.Name())
		if err != nil {
			continue
		}
		ts := types.FileIDTime(id)
		if ts.IsZero() || !ts.Before(cutoff) {
			continue
		}
		if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to prune blob %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}

func (s *DiskStore) path(id types.FileID) string {
	return filepath.Join(s.dir, string(id))
}
