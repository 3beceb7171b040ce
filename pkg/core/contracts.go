package core

import "context"

// Resolver answers bundle metadata lookups.
// Adhering to this interface keeps the composition engine independent of how
// metadata is indexed (filesystem catalog, in-memory fixture, remote registry).
type Resolver interface {
	// Get returns the metadata for id. Absence is a normal, checked
	// condition, not an error.
	Get(id string) (BundleMetadata, bool)

	// ValidateCompatibility cross-references the selection's declared
	// conflicts and returns the verdict as data.
	ValidateCompatibility(ids []string) CompatibilityReport
}

// BundleParser turns one bundle directory into a Bundle record.
// Per-file failures inside the bundle are returned as diagnostics alongside
// whatever parsed; the error return is reserved for failures fatal to the
// whole bundle (notably a missing primary document).
type BundleParser interface {
	Parse(ctx context.Context, meta BundleMetadata) (Bundle, []Diagnostic, error)
}
