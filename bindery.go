package bindery

import (
	"context"

	"github.com/aretw0/bindery/internal/platform"
	"github.com/aretw0/bindery/pkg/adapters/fs"
	"github.com/aretw0/bindery/pkg/catalog"
	"github.com/aretw0/bindery/pkg/compose"
	"github.com/aretw0/bindery/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Composition is a public alias for the composed result.
type Composition = core.Composition

// BundleMetadata is a public alias for a catalog entry.
type BundleMetadata = core.BundleMetadata

// CompatibilityReport is a public alias for a compatibility verdict.
type CompatibilityReport = core.CompatibilityReport

// --- Factory ---

// Open builds and indexes a catalog rooted at the given directory.
func Open(ctx context.Context, root string, opts ...Option) (*catalog.Catalog, error) {
	cat := platform.NewCatalog(root, opts...)
	if err := cat.Initialize(ctx); err != nil {
		return nil, err
	}
	return cat, nil
}

// New builds a Composer over an indexed catalog rooted at the given directory.
func New(ctx context.Context, root string, opts ...Option) (*compose.Composer, error) {
	cat, err := Open(ctx, root, opts...)
	if err != nil {
		return nil, err
	}
	return platform.NewComposer(cat, opts...), nil
}

// NewComposer wires a Composer over an existing catalog. Useful when the
// caller also needs catalog queries (list, validate) from the same index.
func NewComposer(cat *catalog.Catalog, opts ...Option) *compose.Composer {
	return platform.NewComposer(cat, opts...)
}

// NewWriter wires an output writer for the given directory.
func NewWriter(outDir string, opts ...Option) *fs.Writer {
	return platform.NewWriter(outDir, opts...)
}

// --- Operations ---

// Compose is a convenience one-shot: index the catalog at root, compose the
// selected bundles, and return the result without writing anything.
func Compose(ctx context.Context, root string, ids []string, opts ...Option) (*Composition, error) {
	composer, err := New(ctx, root, opts...)
	if err != nil {
		return nil, err
	}
	return composer.Compose(ctx, ids)
}
