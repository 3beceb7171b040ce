// Package catalog loads and indexes bundle metadata from a directory tree.
//
// The expected layout is <category>/<bundle-id>/bundle.yaml, with the bundle
// content (primary document, artifact subdirectories) next to the
// descriptor. The catalog is read-only after Initialize; the optional
// watcher (Watch) is the only later writer and guards the index with a lock.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/bindery/pkg/core"
)

// DefaultSystemDir is the hidden directory holding the scan cache and
// output backups.
const DefaultSystemDir = ".bindery"

// descriptorPattern matches descriptor paths relative to the catalog root.
const descriptorPattern = "*/*/" + DescriptorFilename

// Config holds the configuration for a filesystem-backed catalog.
type Config struct {
	Root      string
	SystemDir string // e.g. ".bindery"
	Logger    *slog.Logger

	// NoCache disables the mtime-indexed descriptor cache.
	NoCache bool
}

// Catalog indexes bundle metadata by id.
type Catalog struct {
	config Config
	cache  *cache

	mu            sync.RWMutex
	entries       map[string]core.BundleMetadata
	order         []string          // ids in scan order, for deterministic projections
	paths         map[string]string // descriptor path (slash, relative) -> id
	diagnostics   []core.Diagnostic
	watcherActive bool
	initialized   bool
}

// New creates a catalog rooted at config.Root. Call Initialize before use.
func New(config Config) *Catalog {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	return &Catalog{
		config: config,
		cache:  newCache(config.Root, config.SystemDir),
	}
}

// Initialize scans the tree once and builds the id index.
//
// A structurally invalid descriptor (missing id or name, unreadable file,
// unknown category, duplicate id) is skipped and reported as a diagnostic;
// it never fails the whole catalog. Only an unusable root is fatal.
func (c *Catalog) Initialize(ctx context.Context) error {
	info, err := os.Stat(c.config.Root)
	if err != nil {
		return fmt.Errorf("catalog root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("catalog root is not a directory: %s", c.config.Root)
	}

	if !c.config.NoCache {
		if err := c.cache.Load(); err != nil && c.config.Logger != nil {
			c.config.Logger.Debug("descriptor cache unavailable, scanning cold", "error", err)
		}
	}

	matches, err := doublestar.Glob(os.DirFS(c.config.Root), descriptorPattern)
	if err != nil {
		return fmt.Errorf("scan catalog: %w", err)
	}
	sort.Strings(matches)

	entries := make(map[string]core.BundleMetadata, len(matches))
	paths := make(map[string]string, len(matches))
	var order []string
	var diagnostics []core.Diagnostic
	seen := make(map[string]bool, len(matches))

	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		meta, err := c.loadDescriptor(rel)
		if err != nil {
			diagnostics = append(diagnostics, core.Diagnostic{Path: rel, Err: err})
			continue
		}
		if existing, dup := entries[meta.ID]; dup {
			diagnostics = append(diagnostics, core.Diagnostic{
				BundleID: meta.ID,
				Path:     rel,
				Err:      fmt.Errorf("duplicate bundle id (already declared at %s)", existing.Path),
			})
			continue
		}

		entries[meta.ID] = meta
		paths[rel] = meta.ID
		order = append(order, meta.ID)
		seen[rel] = true
	}

	if !c.config.NoCache {
		c.cache.Prune(seen)
		if err := c.cache.Save(); err != nil && c.config.Logger != nil {
			c.config.Logger.Debug("failed to persist descriptor cache", "error", err)
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.order = order
	c.paths = paths
	c.diagnostics = diagnostics
	c.initialized = true
	c.mu.Unlock()

	if c.config.Logger != nil {
		c.config.Logger.Debug("catalog initialized",
			"root", c.config.Root,
			"bundles", len(order),
			"skipped", len(diagnostics),
		)
	}
	return nil
}

// loadDescriptor reads one descriptor, through the mtime cache when fresh.
// rel is slash-separated and relative to the root.
func (c *Catalog) loadDescriptor(rel string) (core.BundleMetadata, error) {
	full := filepath.Join(c.config.Root, filepath.FromSlash(rel))
	bundleDir := filepath.Dir(full)

	info, err := os.Stat(full)
	if err != nil {
		return core.BundleMetadata{}, &core.CatalogError{Path: rel, Err: err}
	}

	if !c.config.NoCache {
		if meta, hit := c.cache.Get(rel, info.ModTime()); hit {
			meta.Path = bundleDir
			return meta, nil
		}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return core.BundleMetadata{}, &core.CatalogError{Path: rel, Err: err}
	}
	meta, err := decodeDescriptor(data)
	if err != nil {
		return core.BundleMetadata{}, &core.CatalogError{Path: rel, Err: err}
	}
	meta.Path = bundleDir

	if !c.config.NoCache {
		c.cache.Set(rel, meta, info.ModTime())
	}
	return meta, nil
}

// Get returns the metadata for id. Absence is a normal, checked condition.
func (c *Catalog) Get(id string) (core.BundleMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.entries[id]
	return meta, ok
}

// All returns every indexed bundle in scan order.
func (c *Catalog) All() []core.BundleMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.BundleMetadata, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// ByCategory returns the indexed bundles of one category, in scan order.
func (c *Catalog) ByCategory(category core.Category) []core.BundleMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []core.BundleMetadata
	for _, id := range c.order {
		if c.entries[id].Category == category {
			out = append(out, c.entries[id])
		}
	}
	return out
}

// Diagnostics returns the entries skipped during the last scan.
func (c *Catalog) Diagnostics() []core.Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Len returns the number of indexed bundles.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// ValidateCompatibility cross-references each selected bundle's declared
// conflicts against the other selected ids. Declared dependencies or
// conflicts referencing unknown ids are advisory: they surface as warnings,
// never as failures. The verdict is returned as data; the caller owns the
// policy (hard failure vs. warning).
func (c *Catalog) ValidateCompatibility(ids []string) core.CompatibilityReport {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	report := core.CompatibilityReport{Compatible: true}
	for _, id := range ids {
		meta, ok := c.Get(id)
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("selected bundle %q is not in the catalog", id))
			continue
		}
		for _, dep := range meta.Dependencies {
			if _, known := c.Get(dep); !known {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("bundle %q depends on unknown id %q", id, dep))
				continue
			}
			if !selected[dep] {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("bundle %q depends on %q, which is not selected", id, dep))
			}
		}
		for _, rival := range meta.Conflicts {
			if _, known := c.Get(rival); !known {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("bundle %q declares a conflict with unknown id %q", id, rival))
			}
			if selected[rival] {
				report.Conflicts = append(report.Conflicts, core.Conflict{ID: id, With: rival})
			}
		}
	}

	report.Compatible = len(report.Conflicts) == 0
	return report
}

// reindex reloads one descriptor after a filesystem change and returns the
// affected bundle id. Called by the watcher only.
func (c *Catalog) reindex(rel string) string {
	meta, err := c.loadDescriptor(rel)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		// Descriptor gone or no longer valid: drop the entry it backed.
		id, ok := c.paths[rel]
		if !ok {
			return ""
		}
		delete(c.entries, id)
		delete(c.paths, rel)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		if c.config.Logger != nil {
			c.config.Logger.Debug("bundle dropped from index", "bundle", id, "path", rel)
		}
		return id
	}

	if previous, ok := c.paths[rel]; ok && previous != meta.ID {
		// The descriptor changed its id in place.
		delete(c.entries, previous)
		for i, existing := range c.order {
			if existing == previous {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	if _, known := c.entries[meta.ID]; !known {
		c.order = append(c.order, meta.ID)
	}
	c.entries[meta.ID] = meta
	c.paths[rel] = meta.ID
	return meta.ID
}

func (c *Catalog) setWatcherActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watcherActive = active
}
