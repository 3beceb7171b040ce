package platform

import (
	"io"
	"log/slog"
)

// options holds the internal configuration for the Bindery services.
type options struct {
	logger          *slog.Logger
	systemDir       string
	noCache         bool
	strictConflicts bool
	lenient         bool
	versioned       bool
}

// Option defines a functional option for configuring Bindery.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		systemDir: ".bindery",
	}
}

// WithLogger sets the logger for the services.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".bindery").
// The catalog keeps its scan cache there; the writer keeps backups there.
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithCache enables or disables the catalog scan cache.
// By default, the cache is enabled.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.noCache = !enabled
	}
}

// WithStrictConflicts makes composition fail when the selection contains
// conflicting bundles. By default conflicts are reported, not fatal.
func WithStrictConflicts(strict bool) Option {
	return func(o *options) {
		o.strictConflicts = strict
	}
}

// WithLenient makes composition skip bundles that fail to parse instead of
// aborting. Skipped bundles surface as diagnostics on the result.
func WithLenient(lenient bool) Option {
	return func(o *options) {
		o.lenient = lenient
	}
}

// WithVersioning enables git versioning of written output.
// By default, versioning is disabled.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioned = enabled
	}
}
