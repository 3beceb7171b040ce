package bindery

import (
	"log/slog"

	"github.com/aretw0/bindery/internal/platform"
)

// Option defines a functional option for configuring Bindery.
type Option = platform.Option

// WithLogger sets the logger for the services.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".bindery").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithCache enables or disables the catalog scan cache.
// By default, the cache is enabled.
func WithCache(enabled bool) Option {
	return platform.WithCache(enabled)
}

// WithStrictConflicts makes composition fail on conflicting selections.
// By default conflicts are reported on the result, not fatal.
func WithStrictConflicts(strict bool) Option {
	return platform.WithStrictConflicts(strict)
}

// WithLenient makes composition skip unparsable bundles instead of aborting.
func WithLenient(lenient bool) Option {
	return platform.WithLenient(lenient)
}

// WithVersioning enables git versioning of written output.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}
