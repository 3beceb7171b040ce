package platform

import (
	"github.com/aretw0/bindery/pkg/adapters/fs"
	"github.com/aretw0/bindery/pkg/catalog"
	"github.com/aretw0/bindery/pkg/compose"
)

// NewCatalog builds a catalog over the given root directory.
// The catalog is not indexed yet; call Initialize before querying it.
func NewCatalog(root string, opts ...Option) *catalog.Catalog {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return catalog.New(catalog.Config{
		Root:      root,
		SystemDir: o.systemDir,
		Logger:    o.logger,
		NoCache:   o.noCache,
	})
}

// NewComposer wires a composer over an already built catalog.
func NewComposer(cat *catalog.Catalog, opts ...Option) *compose.Composer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return compose.NewComposer(compose.Config{
		Catalog:         cat,
		Parser:          fs.NewParser(o.logger),
		Logger:          o.logger,
		StrictConflicts: o.strictConflicts,
		Lenient:         o.lenient,
	})
}

// NewWriter wires an output writer for the given directory.
func NewWriter(outDir string, opts ...Option) *fs.Writer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return fs.NewWriter(fs.WriterConfig{
		OutDir:    outDir,
		SystemDir: o.systemDir,
		Logger:    o.logger,
		Versioned: o.versioned,
	})
}
