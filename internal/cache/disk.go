package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clearmeat/assessment/internal/models"
)

const entryFileExt = ".json"

// DiskTier implements DurableTier with one JSON file per key under an
// application-private cache directory. All file I/O for one instance is
// serialized through a single mutex so concurrent reads and writes never
// interleave on the same file (last writer wins).
type DiskTier struct {
	dir   string
	mutex sync.Mutex
}

// NewDiskTier creates a file-backed durable tier rooted at dir
func NewDiskTier(dir string) (DurableTier, error) {
	return newDiskTier(dir)
}

// newDiskTier creates the concrete implementation
func newDiskTier(dir string) (*DiskTier, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskTier{dir: dir}, nil
}

// ReadEntry loads the entry for key. A missing, unreadable, or undecodable
// file is reported as a cache miss; offending files are deleted so the
// cache self-heals instead of propagating decode errors.
func (d *DiskTier) ReadEntry(ctx context.Context, key string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	path := d.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.ErrCacheMiss
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt file: remove it and treat as a miss
		_ = os.Remove(path)
		return nil, models.ErrCacheMiss
	}

	return &entry, nil
}

// WriteEntry persists the entry for key, overwriting any prior entry
func (d *DiskTier) WriteEntry(ctx context.Context, key string, entry *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := os.WriteFile(d.entryPath(key), data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}

	return nil
}

// DeleteEntry removes the entry for key; absent entries are not an error
func (d *DiskTier) DeleteEntry(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := os.Remove(d.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}
	return nil
}

// Keys enumerates all persisted keys
func (d *DiskTier) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	files, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate cache directory: %w", err)
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryFileExt) {
			continue
		}
		key, err := decodeFileName(f.Name())
		if err != nil {
			// Foreign file in the cache dir; skip it
			continue
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// Stats sums entry file sizes. Enumeration failures report (0, 0) rather
// than propagating.
func (d *DiskTier) Stats(ctx context.Context) (models.CacheStats, error) {
	if err := ctx.Err(); err != nil {
		return models.CacheStats{}, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	files, err := os.ReadDir(d.dir)
	if err != nil {
		return models.CacheStats{}, nil
	}

	var stats models.CacheStats
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryFileExt) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		stats.Count++
		stats.TotalBytes += info.Size()
	}

	return stats, nil
}

// Clear deletes every persisted entry
func (d *DiskTier) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	files, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("failed to enumerate cache directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryFileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, f.Name())); err != nil {
			return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
		}
	}

	return nil
}

// entryPath maps an opaque key to a file path. Keys are base64url-encoded
// so they can never escape the cache directory or collide with separators.
func (d *DiskTier) entryPath(key string) string {
	name := base64.RawURLEncoding.EncodeToString([]byte(key)) + entryFileExt
	return filepath.Join(d.dir, name)
}

func decodeFileName(name string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(name, entryFileExt))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
