package compose

import (
	"strings"
	"testing"

	"github.com/aretw0/bindery/pkg/core"
)

func docInput(id string, priority int, doc string, sections ...core.SectionPolicy) DocumentInput {
	return DocumentInput{
		Document: doc,
		Metadata: core.BundleMetadata{
			ID:       id,
			Priority: priority,
			Sections: sections,
		},
	}
}

func TestMergeDocumentsEmpty(t *testing.T) {
	got := MergeDocuments(nil)
	if got != DefaultTitle+"\n" {
		t.Errorf("Expected minimal document, got %q", got)
	}
}

func TestMergeDocumentsSinglePassthrough(t *testing.T) {
	doc := "# Solo\n\n```\n## odd formatting  \n```\nno trailing newline"
	got := MergeDocuments([]DocumentInput{docInput("solo", 1, doc)})
	if got != doc {
		t.Errorf("Single input must pass through verbatim.\nWant %q\nGot  %q", doc, got)
	}
}

func TestMergeDocumentsAdditive(t *testing.T) {
	a := docInput("a", 10, "# Frontend\n\n## Commands\n\n- npm run build\n")
	b := docInput("b", 5, "# Styling\n\n## Commands\n\n- npx tailwind\n")

	got := MergeDocuments(ByPriority([]DocumentInput{b, a}))

	want := "# Frontend\n\n## Commands\n\n- npm run build\n\n" + Boundary + "\n\n- npx tailwind\n"
	if got != want {
		t.Errorf("Merge mismatch.\nWant %q\nGot  %q", want, got)
	}
}

func TestMergeDocumentsHigherPriorityBodyFirst(t *testing.T) {
	a := docInput("a", 1, "## Notes\n\nlow\n")
	b := docInput("b", 9, "## Notes\n\nhigh\n")

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	if strings.Index(got, "high") > strings.Index(got, "low") {
		t.Errorf("Higher priority body must come first: %q", got)
	}
}

func TestMergeDocumentsExclusive(t *testing.T) {
	a := docInput("a", 10, "## Setup\n\ngeneric setup\n")
	b := docInput("b", 5, "## Setup\n\ndetailed setup\n",
		core.SectionPolicy{Title: "Setup", Mergeable: false})

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	if strings.Contains(got, "generic setup") {
		t.Errorf("Exclusive section must drop non-declaring bodies: %q", got)
	}
	if strings.Count(got, "detailed setup") != 1 {
		t.Errorf("Exclusive body must appear exactly once: %q", got)
	}
	if strings.Contains(got, Boundary) {
		t.Errorf("Exclusive section must not carry boundary markers: %q", got)
	}
}

func TestMergeDocumentsExclusiveHighestDeclarerWins(t *testing.T) {
	a := docInput("a", 10, "## Setup\n\nfrom a\n",
		core.SectionPolicy{Title: "Setup", Mergeable: false})
	b := docInput("b", 5, "## Setup\n\nfrom b\n",
		core.SectionPolicy{Title: "Setup", Mergeable: false})

	got := MergeDocuments(ByPriority([]DocumentInput{b, a}))

	if !strings.Contains(got, "from a") || strings.Contains(got, "from b") {
		t.Errorf("Highest-priority declarer must own the section: %q", got)
	}
}

func TestMergeDocumentsDuplicateBodySuppressed(t *testing.T) {
	a := docInput("a", 10, "## Tips\n\nshared advice\n")
	b := docInput("b", 5, "## Tips\n\nshared advice\n")

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	if strings.Count(got, "shared advice") != 1 {
		t.Errorf("Identical bodies must merge to one block: %q", got)
	}
	if strings.Contains(got, Boundary) {
		t.Errorf("A single surviving block needs no boundary: %q", got)
	}
}

func TestMergeDocumentsEmptyBodiesPreserved(t *testing.T) {
	a := docInput("a", 10, "## Empty\n\n## Filled\n\ncontent\n")
	b := docInput("b", 5, "## Blank\n   \n## Filled\n\nmore\n")

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	// Headings with empty or whitespace-only bodies keep their place in the
	// output instead of being dropped.
	if !strings.Contains(got, "## Empty") {
		t.Errorf("Empty-bodied heading lost: %q", got)
	}
	if !strings.Contains(got, "## Blank") {
		t.Errorf("Whitespace-only heading lost: %q", got)
	}

	// They contribute no block, so the only boundary belongs to Filled.
	if strings.Count(got, Boundary) != 1 {
		t.Errorf("Blank bodies must not add boundary markers: %q", got)
	}
	if !strings.Contains(got, "## Empty\n\n## Filled") {
		t.Errorf("Empty section must carry no ghost body: %q", got)
	}
}

func TestMergeDocumentsPreambleFallsThrough(t *testing.T) {
	a := docInput("a", 10, "## Only Sections\n\nbody\n")
	b := docInput("b", 5, "# From B\n\n## Other\n\nbody\n")

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	if !strings.HasPrefix(got, "# From B") {
		t.Errorf("First non-blank preamble in priority order must win: %q", got)
	}
}

func TestMergeDocumentsSectionOrderByFirstAppearance(t *testing.T) {
	a := docInput("a", 10, "## One\n\n1\n\n## Two\n\n2\n")
	b := docInput("b", 5, "## Three\n\n3\n\n## One\n\nextra\n")

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	one := strings.Index(got, "## One")
	two := strings.Index(got, "## Two")
	three := strings.Index(got, "## Three")
	if !(one < two && two < three) {
		t.Errorf("Sections must keep first-appearance order: %q", got)
	}
	if strings.Count(got, "## One") != 1 {
		t.Errorf("Each title must appear once: %q", got)
	}
}

func TestMergeDocumentsIdempotent(t *testing.T) {
	a := docInput("a", 10, "# Top\n\n## Common\n\nfrom a\n")
	b := docInput("b", 5, "## Common\n\nfrom b\n")

	first := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	// Re-merging the composed output with one of its sources must not
	// duplicate blocks or multiply boundary markers.
	again := MergeDocuments(ByPriority([]DocumentInput{
		docInput("merged", 10, first),
		b,
	}))

	if strings.Count(again, "from b") != 1 {
		t.Errorf("Re-merge duplicated a block: %q", again)
	}
	if strings.Count(again, Boundary) != strings.Count(first, Boundary) {
		t.Errorf("Boundary markers multiplied: %q", again)
	}
}

func TestMergeDocumentsEqualPriority(t *testing.T) {
	a := docInput("a", 0, "# A\n## One\nX\n## Common\nFromA")
	b := docInput("b", 0, "# B\n## Two\nY\n## Common\nFromB")

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	for _, want := range []string{"## One", "## Two", "## Common", "FromA", "FromB"} {
		if !strings.Contains(got, want) {
			t.Errorf("Missing %q in %q", want, got)
		}
	}
	if !strings.HasPrefix(got, "# A") {
		t.Errorf("Equal priority keeps input order, preamble must come from A: %q", got)
	}
	if strings.Count(got, "## Common") != 1 {
		t.Errorf("Shared title must appear once: %q", got)
	}
}

func TestMergeDocumentsFenceSurvives(t *testing.T) {
	fenced := "```md\n## Not a real heading\n```"
	a := docInput("a", 10, "## Examples\n\n"+fenced+"\n")
	b := docInput("b", 5, "## Other\n\ntext\n")

	got := MergeDocuments(ByPriority([]DocumentInput{a, b}))

	if !strings.Contains(got, fenced) {
		t.Errorf("Fence contents must survive unchanged: %q", got)
	}
	if strings.Count(got, "## Not a real heading") != 1 {
		t.Errorf("Fenced heading text altered: %q", got)
	}
}

func TestByPriorityStable(t *testing.T) {
	inputs := []DocumentInput{
		docInput("low", 1, "l"),
		docInput("first", 5, "f"),
		docInput("second", 5, "s"),
		docInput("high", 9, "h"),
	}

	sorted := ByPriority(inputs)

	wantOrder := []string{"high", "first", "second", "low"}
	for i, want := range wantOrder {
		if sorted[i].Metadata.ID != want {
			t.Fatalf("Position %d: want %s, got %s", i, want, sorted[i].Metadata.ID)
		}
	}
	if inputs[0].Metadata.ID != "low" {
		t.Errorf("ByPriority must not mutate its input")
	}
}
