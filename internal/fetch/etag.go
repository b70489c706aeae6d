package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Entry records what was last seen for a download URL.
type Entry struct {
	// ETag is the entity tag reported by the server.
	ETag string `yaml:"etag"`
	// Size is the Content-Length of the cached transfer.
	Size int64 `yaml:"size"`
}

// ETagCache is a best-effort memoization table mapping download URLs to
// the entity tag and size last fetched, persisted between runs to skip
// redundant transfers.
type ETagCache struct {
	path    string
	entries map[string]Entry
}

// NewETagCache returns an empty cache that will persist to path.
func NewETagCache(path string) *ETagCache {
	return &ETagCache{
		path:    path,
		entries: make(map[string]Entry),
	}
}

// LoadETags reads the cache from path. A missing file yields an empty
// cache; it is not an error.
func LoadETags(path string) (*ETagCache, error) {
	cache := NewETagCache(path)

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return cache, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read etag cache: %w", err)
	}

	if err = yaml.Unmarshal(contents, &cache.entries); err != nil {
		return nil, fmt.Errorf("unmarshal etag cache: %w", err)
	}

	return cache, nil
}

// Get returns the cached entry for a URL.
func (c *ETagCache) Get(url string) (Entry, bool) {
	entry, ok := c.entries[url]
	return entry, ok
}

// Set records the entry for a URL.
func (c *ETagCache) Set(url string, entry Entry) {
	c.entries[url] = entry
}

// Save persists the cache to its path.
func (c *ETagCache) Save() error {
	data, err := yaml.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("marshal etag cache: %w", err)
	}

	if err = os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write etag cache: %w", err)
	}

	return nil
}
