package compose

import (
	"sort"
	"strings"

	"github.com/aretw0/bindery/pkg/core"
)

const (
	// DefaultTitle is the composed document produced for an empty selection.
	DefaultTitle = "# Workspace"

	// Boundary separates blocks contributed by different bundles under one
	// additive section title. Re-merging a composed document splits on the
	// marker again, so markers never multiply.
	Boundary = "<!-- bindery:boundary -->"
)

// DocumentInput pairs one bundle's primary document with the metadata that
// governs its composition.
type DocumentInput struct {
	Document string
	Metadata core.BundleMetadata
}

// ByPriority returns a copy of inputs stable-sorted highest priority first.
// Ties keep the original relative order.
func ByPriority(inputs []DocumentInput) []DocumentInput {
	out := make([]DocumentInput, len(inputs))
	copy(out, inputs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Metadata.Priority > out[j].Metadata.Priority
	})
	return out
}

// contribution is one bundle's content under a given section title.
type contribution struct {
	body            string
	bundlePriority  int
	sectionPriority int
	exclusive       bool
}

// MergeDocuments composes one document from inputs ordered highest priority
// first (see ByPriority). The result is a pure function of the inputs.
//
// Algorithm:
//  1. Empty input yields a minimal document holding only DefaultTitle.
//  2. A single input passes through verbatim.
//  3. Each document is split into preamble + sections (fence-aware).
//  4. The composed preamble is the first non-blank one in priority order.
//  5. Titles are resolved in order of first appearance: exclusive titles
//     (declared non-mergeable by some bundle) keep only the declaring
//     bundle's body; additive titles concatenate bodies in priority order,
//     boundary-separated, suppressing textual duplicates.
func MergeDocuments(inputs []DocumentInput) string {
	if len(inputs) == 0 {
		return DefaultTitle + "\n"
	}
	if len(inputs) == 1 {
		return inputs[0].Document
	}

	var (
		order    []string
		contribs = make(map[string][]contribution)
		preamble string
	)

	for _, in := range inputs {
		pre, sections := SplitDocument(in.Document)
		if preamble == "" && strings.TrimSpace(pre) != "" {
			preamble = strings.TrimSpace(pre)
		}
		for _, s := range sections {
			if _, seen := contribs[s.Title]; !seen {
				order = append(order, s.Title)
			}
			c := contribution{
				body:            s.Body,
				bundlePriority:  in.Metadata.Priority,
				sectionPriority: in.Metadata.Priority,
			}
			if policy, ok := in.Metadata.SectionPolicyFor(s.Title); ok {
				c.exclusive = !policy.Mergeable
				c.sectionPriority = policy.Priority
			}
			contribs[s.Title] = append(contribs[s.Title], c)
		}
	}

	var parts []string
	if preamble != "" {
		parts = append(parts, preamble)
	}

	for _, title := range order {
		body := resolveTitle(contribs[title])
		part := headingMarker + title
		if body != "" {
			part += "\n\n" + body
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, "\n\n") + "\n"
}

// resolveTitle applies the exclusive-or-additive rule to one title's
// contributions, which arrive in priority order.
func resolveTitle(list []contribution) string {
	if winner, ok := exclusiveWinner(list); ok {
		return strings.TrimSpace(winner.body)
	}

	var blocks []string
	seen := make(map[string]bool)
	for _, c := range list {
		for _, segment := range splitBoundary(c.body) {
			segment = strings.TrimSpace(segment)
			// An empty body keeps its heading (structure is preserved) but
			// contributes no block.
			if segment == "" || seen[segment] {
				continue
			}
			seen[segment] = true
			blocks = append(blocks, segment)
		}
	}
	return strings.Join(blocks, "\n\n"+Boundary+"\n\n")
}

// exclusiveWinner picks the single contribution allowed to own an exclusive
// title: the highest-priority bundle declaring it non-mergeable, with the
// declared section priority breaking ties between equal-priority bundles.
// Contributions arrive sorted by bundle priority descending.
func exclusiveWinner(list []contribution) (contribution, bool) {
	var best contribution
	found := false
	for _, c := range list {
		if !c.exclusive {
			continue
		}
		if !found {
			best, found = c, true
			continue
		}
		if c.bundlePriority == best.bundlePriority && c.sectionPriority > best.sectionPriority {
			best = c
		}
	}
	return best, found
}

// splitBoundary cuts a body on boundary marker lines. A body without markers
// comes back as a single segment.
func splitBoundary(body string) []string {
	lines := strings.Split(body, "\n")
	var segments []string
	var buf []string
	for _, line := range lines {
		if strings.TrimSpace(line) == Boundary {
			segments = append(segments, strings.Join(buf, "\n"))
			buf = nil
			continue
		}
		buf = append(buf, line)
	}
	return append(segments, strings.Join(buf, "\n"))
}
