package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/bindery/pkg/core"
)

// ErrIncompatible is returned when strict conflict checking is enabled and
// the selected bundles declare conflicts with each other.
var ErrIncompatible = errors.New("selected bundles declare conflicts")

// Config wires a Composer.
type Config struct {
	Catalog core.Resolver
	Parser  core.BundleParser
	Logger  *slog.Logger

	// StrictConflicts turns compatibility conflicts into hard failures.
	// By default conflicts are surfaced as data on the Composition.
	StrictConflicts bool

	// Lenient isolates per-bundle parse failures as diagnostics instead of
	// failing the whole run. A bundle that fails to parse is skipped.
	Lenient bool
}

// Composer orchestrates one composition run: resolve the selected ids
// through the catalog, order by priority, parse each bundle, and merge.
// It holds no mutable state; a single Composer is safe for concurrent use.
type Composer struct {
	catalog core.Resolver
	parser  core.BundleParser
	logger  *slog.Logger

	strictConflicts bool
	lenient         bool
}

// NewComposer creates a Composer from an initialized catalog and a parser.
func NewComposer(cfg Config) *Composer {
	return &Composer{
		catalog:         cfg.Catalog,
		parser:          cfg.Parser,
		logger:          cfg.Logger,
		strictConflicts: cfg.StrictConflicts,
		lenient:         cfg.Lenient,
	}
}

// Compose resolves, parses, and merges the selected bundles.
//
// Workflow:
//  1. Resolve every id through the catalog (unknown id fails the run).
//  2. Cross-reference declared conflicts; strict mode fails, otherwise the
//     report travels with the result.
//  3. Stable-sort by priority descending (ties keep selection order).
//  4. Parse each bundle; diagnostics accumulate, lenient mode skips bundles
//     whose parse fails outright.
//  5. Merge documents (priority order), artifact lists (ascending priority,
//     positional last-writer-wins), and settings (ascending priority fold).
func (c *Composer) Compose(ctx context.Context, ids []string) (*core.Composition, error) {
	metas := make([]core.BundleMetadata, 0, len(ids))
	for _, id := range ids {
		meta, ok := c.catalog.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		metas = append(metas, meta)
	}

	report := c.catalog.ValidateCompatibility(ids)
	if !report.Compatible && c.strictConflicts {
		return nil, fmt.Errorf("%w: %d conflict(s)", ErrIncompatible, len(report.Conflicts))
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].Priority > metas[j].Priority
	})

	var (
		bundles     []core.Bundle
		diagnostics []core.Diagnostic
	)
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bundle, diags, err := c.parser.Parse(ctx, meta)
		diagnostics = append(diagnostics, diags...)
		if err != nil {
			if !c.lenient {
				return nil, err
			}
			if c.logger != nil {
				c.logger.Warn("skipping unparseable bundle", "bundle", meta.ID, "error", err)
			}
			diagnostics = append(diagnostics, core.Diagnostic{BundleID: meta.ID, Err: err})
			continue
		}
		bundles = append(bundles, bundle)
	}

	inputs := make([]DocumentInput, 0, len(bundles))
	for _, b := range bundles {
		inputs = append(inputs, DocumentInput{Document: b.Document, Metadata: b.Metadata})
	}
	document := MergeDocuments(inputs)

	// Artifact groups go in ascending priority so the positional
	// last-writer-wins rule agrees with priority.
	ascending := make([]core.Bundle, len(bundles))
	for i, b := range bundles {
		ascending[len(bundles)-1-i] = b
	}

	agentGroups := make([][]core.Agent, 0, len(ascending))
	commandGroups := make([][]core.Command, 0, len(ascending))
	hookGroups := make([][]core.Hook, 0, len(ascending))
	settings := core.Settings{}
	for _, b := range ascending {
		agentGroups = append(agentGroups, b.Agents)
		commandGroups = append(commandGroups, b.Commands)
		hookGroups = append(hookGroups, b.Hooks)
		if b.Settings != nil {
			settings = MergeSettings(settings, b.Settings)
		}
	}
	if len(settings) == 0 {
		settings = nil
	}

	composed := make([]string, 0, len(bundles))
	for _, b := range bundles {
		composed = append(composed, b.Metadata.ID)
	}

	if c.logger != nil {
		c.logger.Debug("composition complete",
			"bundles", len(bundles),
			"diagnostics", len(diagnostics),
			"conflicts", len(report.Conflicts),
		)
	}

	return &core.Composition{
		Document:      document,
		Agents:        MergeArtifacts(agentGroups),
		Commands:      MergeArtifacts(commandGroups),
		Hooks:         MergeArtifacts(hookGroups),
		Settings:      settings,
		Diagnostics:   diagnostics,
		Compatibility: report,
		Bundles:       composed,
	}, nil
}
