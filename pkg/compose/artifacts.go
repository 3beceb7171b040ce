package compose

// Keyed is implemented by artifact records addressable by a unique name
// within their category.
type Keyed interface {
	Key() string
}

// MergeArtifacts flattens ordered groups of named artifacts into one
// deduplicated list. Groups are walked in the given positional order: the
// first occurrence of a name claims its slot, a later occurrence replaces
// the stored record wholesale (full-field override, not a field-level
// merge). The net effect is last-writer-wins by group position, with output
// order fixed by first appearance.
//
// This is a positional rule, independent of any numeric priority on the
// metadata; the caller is responsible for ordering the groups according to
// whatever precedence it wants honored. The Composer passes groups in
// ascending priority order so that last-writer-wins equals
// highest-priority-wins.
func MergeArtifacts[T Keyed](groups [][]T) []T {
	slot := make(map[string]int)
	var out []T
	for _, group := range groups {
		for _, artifact := range group {
			key := artifact.Key()
			if i, ok := slot[key]; ok {
				out[i] = artifact
				continue
			}
			slot[key] = len(out)
			out = append(out, artifact)
		}
	}
	return out
}
