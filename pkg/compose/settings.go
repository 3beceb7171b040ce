package compose

import "github.com/aretw0/bindery/pkg/core"

// MergeSettings deep-merges overlay onto base and returns a fresh map;
// neither input is mutated. Nested maps merge recursively, scalars and
// arrays from the overlay replace the base value wholesale. The engine
// never interprets the keys.
func MergeSettings(base, overlay core.Settings) core.Settings {
	out := make(core.Settings, len(base)+len(overlay))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range overlay {
		baseMap, baseOK := out[k].(map[string]any)
		overlayMap, overlayOK := v.(map[string]any)
		if baseOK && overlayOK {
			out[k] = map[string]any(MergeSettings(baseMap, overlayMap))
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case []any:
		l := make([]any, len(val))
		for i, item := range val {
			l[i] = cloneValue(item)
		}
		return l
	default:
		return v
	}
}
