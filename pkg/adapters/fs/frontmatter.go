// Package fs is the filesystem adapter: it parses bundle directories into
// domain records and persists compositions back to disk.
package fs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseFrontmatter splits a markdown artifact file into its YAML header and
// free-text body. A file without a frontmatter block yields empty metadata
// and the whole payload as body.
func parseFrontmatter(data []byte) (map[string]any, string, error) {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return map[string]any{}, string(data), nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("---"), 2)
	if len(parts) == 1 {
		return nil, "", errors.New("frontmatter started but no closing delimiter found")
	}

	meta := make(map[string]any)
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return nil, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	body := strings.TrimPrefix(string(parts[1]), "\n")
	body = strings.TrimPrefix(body, "\r\n")
	return meta, body, nil
}

// serializeFrontmatter renders a YAML header followed by the body. An empty
// metadata map yields the body alone.
func serializeFrontmatter(meta map[string]any, body string) ([]byte, error) {
	var buf bytes.Buffer
	if len(meta) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(meta); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// metaString reads a string field from parsed frontmatter.
func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metaStringSlice reads a string list field from parsed frontmatter,
// tolerating both YAML sequences and comma-separated scalars.
func metaStringSlice(meta map[string]any, key string) []string {
	switch v := meta[key].(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	default:
		return nil
	}
}
