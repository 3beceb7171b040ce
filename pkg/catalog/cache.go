package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/bindery/pkg/adapters/fs"
	"github.com/aretw0/bindery/pkg/core"
)

// indexEntry caches one parsed descriptor keyed by its mtime.
type indexEntry struct {
	Metadata     core.BundleMetadata `json:"metadata"`
	LastModified time.Time           `json:"lastModified"`
}

// index is the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // key is the descriptor path relative to the root
	dirty   bool
	mu      sync.RWMutex
}

// cache manages loading, updating, and saving the descriptor index.
type cache struct {
	Path  string // {root}/{systemDir}/index.json
	index *index
}

func newCache(root, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(root, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. A missing or corrupted file yields an
// empty index so the scan self-heals.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(data, c.index); err != nil {
		c.index.Entries = make(map[string]*indexEntry)
		return nil
	}

	c.index.dirty = false
	return nil
}

// Save persists the cache to disk if it is dirty.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	if err := fs.WriteFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Get retrieves a cached descriptor if present and fresh.
func (c *cache) Get(rel string, currentMtime time.Time) (core.BundleMetadata, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[rel]
	if !ok || !entry.LastModified.Equal(currentMtime) {
		return core.BundleMetadata{}, false
	}
	return entry.Metadata, true
}

// Set updates a cache entry.
func (c *cache) Set(rel string, meta core.BundleMetadata, mtime time.Time) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[rel] = &indexEntry{Metadata: meta, LastModified: mtime}
	c.index.dirty = true
}

// Prune removes entries whose descriptor was not seen by the last scan.
func (c *cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	for rel := range c.index.Entries {
		if !keep[rel] {
			delete(c.index.Entries, rel)
			c.index.dirty = true
		}
	}
}

// Len returns the number of cached descriptors.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}
