package compose

import (
	"github.com/aretw0/introspection"
)

// ComposerState exposes internal state for observability.
type ComposerState struct {
	StrictConflicts bool   `json:"strict_conflicts"`
	Lenient         bool   `json:"lenient"`
	CatalogType     string `json:"catalog_type"`
}

// State implements introspection.Introspectable.
func (c *Composer) State() any {
	catalogType := "resolver"
	if comp, ok := c.catalog.(introspection.Component); ok {
		catalogType = comp.ComponentType()
	}

	return ComposerState{
		StrictConflicts: c.strictConflicts,
		Lenient:         c.lenient,
		CatalogType:     catalogType,
	}
}

// ComponentType implements introspection.Component.
func (c *Composer) ComponentType() string {
	return "composer"
}

var _ introspection.Introspectable = (*Composer)(nil)
var _ introspection.Component = (*Composer)(nil)
