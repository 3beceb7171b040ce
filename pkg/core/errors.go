package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound signals a bundle id absent from the catalog.
	ErrNotFound = errors.New("bundle not found in catalog")

	// ErrNoDocument signals a bundle directory without a primary document.
	ErrNoDocument = errors.New("bundle has no primary document")
)

// CatalogError reports a malformed or unreadable metadata entry.
// One bad entry is skipped and reported; it never fails the whole catalog.
type CatalogError struct {
	Path string
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Path, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// ParseError reports a failure attributable to one bundle and, where
// applicable, one file inside it. A missing primary document is fatal for
// that bundle only; per-artifact failures are collected as diagnostics.
type ParseError struct {
	BundleID string
	Path     string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s: %s: %v", e.BundleID, e.Path, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.BundleID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MergeError is reserved for pathological composition inputs. Normal input
// never produces one.
type MergeError struct {
	Title string
	Err   error
}

func (e *MergeError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("merge %q: %v", e.Title, e.Err)
	}
	return fmt.Sprintf("merge: %v", e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }
