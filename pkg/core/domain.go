// BundleMetadata and Bundle are the central entities of the domain.
package core

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

func trimEqual(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// Category classifies a bundle by the concern it configures.
type Category string

const (
	CategoryFramework         Category = "framework"
	CategoryUI                Category = "ui"
	CategoryTooling           Category = "tooling"
	CategoryTesting           Category = "testing"
	CategoryDatabase          Category = "database"
	CategoryAPI               Category = "api"
	CategoryServerIntegration Category = "server-integration"
)

// Categories lists every valid bundle category in display order.
var Categories = []Category{
	CategoryFramework,
	CategoryUI,
	CategoryTooling,
	CategoryTesting,
	CategoryDatabase,
	CategoryAPI,
	CategoryServerIntegration,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SectionPolicy declares how a bundle author wants one titled section of its
// own document treated when composed with other bundles. Sections are
// mergeable unless the author writes mergeable: false; exclusivity must be
// declared explicitly.
type SectionPolicy struct {
	Title     string `yaml:"title" json:"title"`
	Mergeable bool   `yaml:"mergeable" json:"mergeable"`
	Priority  int    `yaml:"priority" json:"priority"`
}

// UnmarshalYAML defaults an omitted mergeable field to true so that leaving
// it out never makes a section silently exclusive.
func (p *SectionPolicy) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Title     string `yaml:"title"`
		Mergeable *bool  `yaml:"mergeable"`
		Priority  int    `yaml:"priority"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	p.Title = raw.Title
	p.Priority = raw.Priority
	p.Mergeable = raw.Mergeable == nil || *raw.Mergeable
	return nil
}

// BundleMetadata describes a bundle as indexed by the catalog.
// Priority orders bundles for composition: higher is more authoritative,
// ties keep input order.
type BundleMetadata struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name"`
	Version      string          `yaml:"version" json:"version,omitempty"`
	Description  string          `yaml:"description" json:"description,omitempty"`
	Category     Category        `yaml:"category" json:"category,omitempty"`
	Priority     int             `yaml:"priority" json:"priority"`
	Dependencies []string        `yaml:"dependencies" json:"dependencies,omitempty"`
	Conflicts    []string        `yaml:"conflicts" json:"conflicts,omitempty"`
	Sections     []SectionPolicy `yaml:"sections" json:"sections,omitempty"`

	// Path is the bundle's root directory, filled from the descriptor location.
	Path string `yaml:"-" json:"path"`
}

// SectionPolicyFor returns the declared policy for a section title, if any.
// Titles are compared by exact text after trimming.
func (m BundleMetadata) SectionPolicyFor(title string) (SectionPolicy, bool) {
	for _, p := range m.Sections {
		if trimEqual(p.Title, title) {
			return p, true
		}
	}
	return SectionPolicy{}, false
}

// Settings is the opaque structured settings object carried by a bundle.
// The engine never interprets it; it is deep-merged as data.
type Settings map[string]any

// Bundle is one fully parsed bundle: metadata, primary document, and the
// categorized artifact lists. Immutable after parsing.
type Bundle struct {
	Metadata BundleMetadata
	Document string
	Agents   []Agent
	Commands []Command
	Hooks    []Hook
	Settings Settings
}

// Agent is a named agent definition contributed by a bundle.
type Agent struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Model       string   `json:"model,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	Content     string   `json:"content,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// Key returns the dedup key for artifact merging.
func (a Agent) Key() string { return a.Name }

// Command is a named command definition contributed by a bundle.
type Command struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	ArgumentHint string   `json:"argumentHint,omitempty"`
	AllowedTools []string `json:"allowedTools,omitempty"`
	Content      string   `json:"content,omitempty"`
	Source       string   `json:"source,omitempty"`
}

// Key returns the dedup key for artifact merging.
func (c Command) Key() string { return c.Name }

// Hook is a named hook definition contributed by a bundle.
type Hook struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Event       string `json:"event,omitempty"`
	Matcher     string `json:"matcher,omitempty"`
	Content     string `json:"content,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Key returns the dedup key for artifact merging.
func (h Hook) Key() string { return h.Name }

// Diagnostic records a non-fatal failure attributed to a bundle and,
// where applicable, a specific file path.
type Diagnostic struct {
	BundleID string `json:"bundleId,omitempty"`
	Path     string `json:"path,omitempty"`
	Err      error  `json:"-"`
}

func (d Diagnostic) String() string {
	switch {
	case d.BundleID != "" && d.Path != "":
		return fmt.Sprintf("%s: %s: %v", d.BundleID, d.Path, d.Err)
	case d.Path != "":
		return fmt.Sprintf("%s: %v", d.Path, d.Err)
	default:
		return fmt.Sprintf("%s: %v", d.BundleID, d.Err)
	}
}

// Conflict is one pairwise incompatibility between selected bundles.
// ID is the bundle declaring the conflict, With the bundle it names.
type Conflict struct {
	ID   string `json:"id"`
	With string `json:"with"`
}

// CompatibilityReport is the result of cross-referencing a selection's
// declared conflicts. Returned as data; the caller decides whether a
// conflict blocks composition.
type CompatibilityReport struct {
	Compatible bool       `json:"compatible"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`

	// Warnings lists advisory problems, e.g. dependencies or conflicts
	// referencing ids unknown to the catalog.
	Warnings []string `json:"warnings,omitempty"`
}

// Composition is the output of one composition run: a single composed
// document plus deduplicated artifact lists and folded settings.
type Composition struct {
	Document    string       `json:"document"`
	Agents      []Agent      `json:"agents,omitempty"`
	Commands    []Command    `json:"commands,omitempty"`
	Hooks       []Hook       `json:"hooks,omitempty"`
	Settings    Settings     `json:"settings,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	Compatibility CompatibilityReport `json:"compatibility"`

	// Bundles lists the composed bundle ids, highest priority first.
	Bundles []string `json:"bundles"`
}
