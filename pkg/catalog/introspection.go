package catalog

import (
	"github.com/aretw0/introspection"
)

// CatalogState exposes internal state for observability.
type CatalogState struct {
	Root          string `json:"root"`
	SystemDir     string `json:"system_dir"`
	Bundles       int    `json:"bundles"`
	Diagnostics   int    `json:"diagnostics"`
	CacheSize     int    `json:"cache_size"`
	WatcherActive bool   `json:"watcher_active"`
	Initialized   bool   `json:"initialized"`
}

// State implements introspection.Introspectable.
func (c *Catalog) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CatalogState{
		Root:          c.config.Root,
		SystemDir:     c.config.SystemDir,
		Bundles:       len(c.order),
		Diagnostics:   len(c.diagnostics),
		CacheSize:     c.cache.Len(),
		WatcherActive: c.watcherActive,
		Initialized:   c.initialized,
	}
}

// ComponentType implements introspection.Component.
func (c *Catalog) ComponentType() string {
	return "catalog"
}

var _ introspection.Introspectable = (*Catalog)(nil)
var _ introspection.Component = (*Catalog)(nil)
