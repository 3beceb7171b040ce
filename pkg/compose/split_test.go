package compose

import (
	"strings"
	"testing"
)

func TestSplitDocument(t *testing.T) {
	doc := "# Intro\n\nSome preamble.\n\n## Setup\n\nInstall things.\n\n## Usage\n\nRun things.\n"

	preamble, sections := SplitDocument(doc)

	if strings.TrimSpace(preamble) != "# Intro\n\nSome preamble." {
		t.Errorf("Preamble mismatch: %q", preamble)
	}
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "Setup" || sections[1].Title != "Usage" {
		t.Errorf("Title mismatch: %q, %q", sections[0].Title, sections[1].Title)
	}
	if strings.TrimSpace(sections[0].Body) != "Install things." {
		t.Errorf("Body mismatch: %q", sections[0].Body)
	}
}

func TestSplitDocumentNoSections(t *testing.T) {
	doc := "# Only a title\n\nAnd text.\n"

	preamble, sections := SplitDocument(doc)

	if preamble != doc {
		t.Errorf("Expected whole document as preamble, got %q", preamble)
	}
	if len(sections) != 0 {
		t.Errorf("Expected no sections, got %d", len(sections))
	}
}

func TestSplitDocumentFenceAware(t *testing.T) {
	doc := "## Real\n\n```md\n## Not a heading\n```\n\n## Also Real\n\ntext\n"

	_, sections := SplitDocument(doc)

	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "Real" || sections[1].Title != "Also Real" {
		t.Errorf("Title mismatch: %q, %q", sections[0].Title, sections[1].Title)
	}
	if !strings.Contains(sections[0].Body, "## Not a heading") {
		t.Errorf("Fenced heading leaked out of section body: %q", sections[0].Body)
	}
}

func TestSplitDocumentTildeFence(t *testing.T) {
	doc := "## A\n\n~~~\n## hidden\n~~~\n\n## B\n"

	_, sections := SplitDocument(doc)

	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
}

func TestSplitDocumentUnclosedFence(t *testing.T) {
	// A fence that never closes swallows the rest of the document.
	doc := "## A\n\n```\n## hidden\n\n## still hidden\n"

	_, sections := SplitDocument(doc)

	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if !strings.Contains(sections[0].Body, "## still hidden") {
		t.Errorf("Unclosed fence should keep headings in the body: %q", sections[0].Body)
	}
}

func TestSplitDocumentIndentedHeadingIgnored(t *testing.T) {
	doc := "## A\n\n  ## indented\n\ntext\n"

	_, sections := SplitDocument(doc)

	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if !strings.Contains(sections[0].Body, "## indented") {
		t.Errorf("Indented heading should stay in the body: %q", sections[0].Body)
	}
}

func TestFenceDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"```", "```"},
		{"```go", "```"},
		{"~~~~", "~~~~"},
		{"``", ""},
		{"text", ""},
		{"", ""},
	}

	for _, tc := range tests {
		if got := fenceDelimiter(tc.line); got != tc.want {
			t.Errorf("fenceDelimiter(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}
