package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/bindery/pkg/core"
)

// stubCatalog implements core.Resolver in memory.
type stubCatalog struct {
	metas  map[string]core.BundleMetadata
	report core.CompatibilityReport
}

func newStubCatalog(metas ...core.BundleMetadata) *stubCatalog {
	c := &stubCatalog{
		metas:  make(map[string]core.BundleMetadata),
		report: core.CompatibilityReport{Compatible: true},
	}
	for _, m := range metas {
		c.metas[m.ID] = m
	}
	return c
}

func (c *stubCatalog) Get(id string) (core.BundleMetadata, bool) {
	m, ok := c.metas[id]
	return m, ok
}

func (c *stubCatalog) ValidateCompatibility(ids []string) core.CompatibilityReport {
	return c.report
}

// stubParser implements core.BundleParser from a fixed bundle set.
type stubParser struct {
	bundles map[string]core.Bundle
	failing map[string]error
}

func (p *stubParser) Parse(ctx context.Context, meta core.BundleMetadata) (core.Bundle, []core.Diagnostic, error) {
	if err, ok := p.failing[meta.ID]; ok {
		return core.Bundle{}, nil, err
	}
	b := p.bundles[meta.ID]
	b.Metadata = meta
	return b, nil, nil
}

func meta(id string, priority int) core.BundleMetadata {
	return core.BundleMetadata{ID: id, Name: id, Priority: priority}
}

func TestComposeUnknownBundle(t *testing.T) {
	composer := NewComposer(Config{
		Catalog: newStubCatalog(meta("known", 1)),
		Parser:  &stubParser{},
	})

	_, err := composer.Compose(context.Background(), []string{"known", "ghost"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestComposeStrictConflicts(t *testing.T) {
	cat := newStubCatalog(meta("a", 1), meta("b", 1))
	cat.report = core.CompatibilityReport{
		Compatible: false,
		Conflicts:  []core.Conflict{{ID: "a", With: "b"}},
	}

	composer := NewComposer(Config{Catalog: cat, Parser: &stubParser{}, StrictConflicts: true})

	_, err := composer.Compose(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrIncompatible) {
		t.Errorf("Expected ErrIncompatible, got %v", err)
	}
}

func TestComposeConflictsSurfacedWhenNotStrict(t *testing.T) {
	cat := newStubCatalog(meta("a", 1), meta("b", 1))
	cat.report = core.CompatibilityReport{
		Compatible: false,
		Conflicts:  []core.Conflict{{ID: "a", With: "b"}},
	}

	composer := NewComposer(Config{
		Catalog: cat,
		Parser: &stubParser{bundles: map[string]core.Bundle{
			"a": {Document: "## A\n\na\n"},
			"b": {Document: "## B\n\nb\n"},
		}},
	})

	result, err := composer.Compose(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if result.Compatibility.Compatible {
		t.Errorf("Report must travel with the result")
	}
	if len(result.Compatibility.Conflicts) != 1 {
		t.Errorf("Expected 1 conflict, got %d", len(result.Compatibility.Conflicts))
	}
}

func TestComposePriorityGovernsArtifacts(t *testing.T) {
	cat := newStubCatalog(meta("low", 1), meta("high", 9))
	parser := &stubParser{bundles: map[string]core.Bundle{
		"low": {
			Document: "## Shared\n\nlow body\n",
			Agents:   []core.Agent{{Name: "helper", Source: "low"}},
		},
		"high": {
			Document: "## Shared\n\nhigh body\n",
			Agents:   []core.Agent{{Name: "helper", Source: "high"}},
		},
	}}

	composer := NewComposer(Config{Catalog: cat, Parser: parser})

	// Selection order must not matter; priority does.
	result, err := composer.Compose(context.Background(), []string{"low", "high"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(result.Agents) != 1 {
		t.Fatalf("Expected 1 agent, got %d", len(result.Agents))
	}
	if result.Agents[0].Source != "high" {
		t.Errorf("Higher-priority agent must win, got %q", result.Agents[0].Source)
	}
	if strings.Index(result.Document, "high body") > strings.Index(result.Document, "low body") {
		t.Errorf("Higher-priority body must come first: %q", result.Document)
	}
	if result.Bundles[0] != "high" || result.Bundles[1] != "low" {
		t.Errorf("Composed order mismatch: %v", result.Bundles)
	}
}

func TestComposeSettingsFold(t *testing.T) {
	cat := newStubCatalog(meta("low", 1), meta("high", 9))
	parser := &stubParser{bundles: map[string]core.Bundle{
		"low":  {Document: "a", Settings: core.Settings{"mode": "low", "keep": true}},
		"high": {Document: "b", Settings: core.Settings{"mode": "high"}},
	}}

	composer := NewComposer(Config{Catalog: cat, Parser: parser})

	result, err := composer.Compose(context.Background(), []string{"high", "low"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if result.Settings["mode"] != "high" {
		t.Errorf("Higher-priority settings must overlay, got %v", result.Settings["mode"])
	}
	if result.Settings["keep"] != true {
		t.Errorf("Lower-priority keys must survive, got %v", result.Settings["keep"])
	}
}

func TestComposeLenientSkipsBrokenBundle(t *testing.T) {
	cat := newStubCatalog(meta("good", 5), meta("bad", 1))
	parser := &stubParser{
		bundles: map[string]core.Bundle{"good": {Document: "# Good\n"}},
		failing: map[string]error{"bad": errors.New("boom")},
	}

	composer := NewComposer(Config{Catalog: cat, Parser: parser, Lenient: true})

	result, err := composer.Compose(context.Background(), []string{"good", "bad"})
	if err != nil {
		t.Fatalf("Lenient compose must not fail: %v", err)
	}
	if len(result.Bundles) != 1 || result.Bundles[0] != "good" {
		t.Errorf("Broken bundle must be skipped: %v", result.Bundles)
	}
	if len(result.Diagnostics) == 0 {
		t.Errorf("Skip must leave a diagnostic")
	}
}

func TestComposeStrictParseFailure(t *testing.T) {
	cat := newStubCatalog(meta("bad", 1))
	parser := &stubParser{failing: map[string]error{"bad": errors.New("boom")}}

	composer := NewComposer(Config{Catalog: cat, Parser: parser})

	_, err := composer.Compose(context.Background(), []string{"bad"})
	if err == nil {
		t.Errorf("Parse failure must abort without lenient mode")
	}
}

func TestComposeCancelledContext(t *testing.T) {
	cat := newStubCatalog(meta("a", 1))
	parser := &stubParser{bundles: map[string]core.Bundle{"a": {Document: "x"}}}

	composer := NewComposer(Config{Catalog: cat, Parser: parser})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := composer.Compose(ctx, []string{"a"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
