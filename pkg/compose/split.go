// Package compose implements the merge algorithms that turn several parsed
// bundles into one composed output: section-level document merging and
// positional artifact-list merging. All functions here are pure; no I/O, no
// shared state, safe to invoke concurrently for different input sets.
package compose

import "strings"

// Section is one titled block within a primary document, produced by
// splitting on level-2 heading markers.
type Section struct {
	Title     string
	Body      string
	Mergeable bool
	Priority  int
}

const headingMarker = "## "

// SplitDocument breaks a primary document into its preamble (the text before
// the first section heading) and its ordered level-2 sections.
//
// The scan tracks fenced-code-block state (``` and ~~~) so heading-like text
// inside a fence is never treated as a section boundary. Headings are
// recognized at column zero only.
func SplitDocument(text string) (preamble string, sections []Section) {
	lines := strings.Split(text, "\n")

	var current *Section
	var buf []string
	var fence string

	flush := func() {
		body := strings.Join(buf, "\n")
		if current == nil {
			preamble = body
		} else {
			current.Body = body
			sections = append(sections, *current)
		}
		buf = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if delim := fenceDelimiter(trimmed); delim != "" {
			if fence == "" {
				fence = delim
			} else if delim[0] == fence[0] && len(delim) >= len(fence) {
				fence = ""
			}
		}

		if fence == "" && strings.HasPrefix(line, headingMarker) {
			flush()
			current = &Section{Title: strings.TrimSpace(strings.TrimPrefix(line, headingMarker)), Mergeable: true}
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return preamble, sections
}

// fenceDelimiter returns the leading backtick or tilde run if the line opens
// or closes a fenced code block, or "" otherwise.
func fenceDelimiter(trimmed string) string {
	if trimmed == "" {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}
