package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/bindery/pkg/core"
)

const (
	// DocumentFilename is the required primary document of a bundle.
	DocumentFilename = "bundle.md"
	// SettingsFilename is the optional opaque settings object.
	SettingsFilename = "settings.json"

	// AgentsDir, CommandsDir, and HooksDir are the optional artifact
	// subdirectories. A missing directory yields an empty list, not an error.
	AgentsDir   = "agents"
	CommandsDir = "commands"
	HooksDir    = "hooks"
)

// artifactPattern matches artifact files within a category directory.
const artifactPattern = "**/*.md"

// Parser turns one bundle directory into a core.Bundle.
//
// Parses of independent bundles share no mutable state: one Parser may be
// used from multiple goroutines.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a bundle parser. logger may be nil.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads the bundle rooted at meta.Path.
//
// A missing primary document is fatal for this bundle (ParseError wrapping
// core.ErrNoDocument). Per-artifact failures are isolated: each is collected
// as a diagnostic attributed to its file path, and sibling files still
// parse.
func (p *Parser) Parse(ctx context.Context, meta core.BundleMetadata) (core.Bundle, []core.Diagnostic, error) {
	if meta.Path == "" {
		return core.Bundle{}, nil, &core.ParseError{BundleID: meta.ID, Err: errors.New("metadata has no path")}
	}
	if err := ctx.Err(); err != nil {
		return core.Bundle{}, nil, err
	}

	docPath := filepath.Join(meta.Path, DocumentFilename)
	data, err := os.ReadFile(docPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Bundle{}, nil, &core.ParseError{BundleID: meta.ID, Path: DocumentFilename, Err: core.ErrNoDocument}
		}
		return core.Bundle{}, nil, &core.ParseError{BundleID: meta.ID, Path: DocumentFilename, Err: err}
	}

	bundle := core.Bundle{
		Metadata: meta,
		Document: string(data),
	}
	var diagnostics []core.Diagnostic

	collect := func(dir string, decode func(string, map[string]any, string)) error {
		files, err := p.artifactFiles(filepath.Join(meta.Path, dir))
		if err != nil {
			return err
		}
		for _, rel := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			attributed := filepath.ToSlash(filepath.Join(dir, rel))
			meta2, body, err := p.readArtifact(filepath.Join(meta.Path, dir, rel))
			if err != nil {
				diagnostics = append(diagnostics, core.Diagnostic{BundleID: meta.ID, Path: attributed, Err: err})
				continue
			}
			name := metaString(meta2, "name")
			if name == "" {
				diagnostics = append(diagnostics, core.Diagnostic{
					BundleID: meta.ID,
					Path:     attributed,
					Err:      errors.New("artifact header missing name"),
				})
				continue
			}
			decode(name, meta2, body)
		}
		return nil
	}

	if err := collect(AgentsDir, func(name string, m map[string]any, body string) {
		bundle.Agents = append(bundle.Agents, core.Agent{
			Name:        name,
			Description: metaString(m, "description"),
			Model:       metaString(m, "model"),
			Tools:       metaStringSlice(m, "tools"),
			Content:     body,
			Source:      meta.ID,
		})
	}); err != nil {
		return core.Bundle{}, diagnostics, err
	}

	if err := collect(CommandsDir, func(name string, m map[string]any, body string) {
		bundle.Commands = append(bundle.Commands, core.Command{
			Name:         name,
			Description:  metaString(m, "description"),
			ArgumentHint: metaString(m, "argument-hint"),
			AllowedTools: metaStringSlice(m, "allowed-tools"),
			Content:      body,
			Source:       meta.ID,
		})
	}); err != nil {
		return core.Bundle{}, diagnostics, err
	}

	if err := collect(HooksDir, func(name string, m map[string]any, body string) {
		bundle.Hooks = append(bundle.Hooks, core.Hook{
			Name:        name,
			Description: metaString(m, "description"),
			Event:       metaString(m, "event"),
			Matcher:     metaString(m, "matcher"),
			Content:     body,
			Source:      meta.ID,
		})
	}); err != nil {
		return core.Bundle{}, diagnostics, err
	}

	settings, diag := p.readSettings(meta)
	if diag != nil {
		diagnostics = append(diagnostics, *diag)
	}
	bundle.Settings = settings

	if p.logger != nil {
		p.logger.Debug("bundle parsed",
			"bundle", meta.ID,
			"agents", len(bundle.Agents),
			"commands", len(bundle.Commands),
			"hooks", len(bundle.Hooks),
			"diagnostics", len(diagnostics),
		)
	}
	return bundle, diagnostics, nil
}

// artifactFiles lists markdown artifact files under dir, sorted for
// deterministic output. A missing directory is not an error.
func (p *Parser) artifactFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), artifactPattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (p *Parser) readArtifact(path string) (map[string]any, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return parseFrontmatter(data)
}

// readSettings reads the optional settings object. Absence yields nil;
// invalid JSON is isolated as a diagnostic, not a bundle failure.
func (p *Parser) readSettings(meta core.BundleMetadata) (core.Settings, *core.Diagnostic) {
	data, err := os.ReadFile(filepath.Join(meta.Path, SettingsFilename))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.Diagnostic{BundleID: meta.ID, Path: SettingsFilename, Err: err}
	}

	var settings core.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, &core.Diagnostic{
			BundleID: meta.ID,
			Path:     SettingsFilename,
			Err:      fmt.Errorf("invalid json: %w", err),
		}
	}
	return settings, nil
}
