package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/bindery/pkg/compose"
	"github.com/aretw0/bindery/pkg/core"
	"github.com/aretw0/bindery/pkg/git"
)

// OutputDocument is the filename of the composed primary document.
const OutputDocument = "BUNDLE.md"

// WriterConfig configures an output Writer.
type WriterConfig struct {
	OutDir    string
	SystemDir string // e.g. ".bindery"
	Logger    *slog.Logger

	// Versioned stages and commits the written files with git.
	Versioned bool
}

// Writer persists a composition to an output directory: the composed
// document, one file per artifact, and the folded settings object. Writes
// are atomic; the previous primary document is backed up under the system
// directory before being replaced.
type Writer struct {
	config WriterConfig
	git    *git.Client
}

// NewWriter creates a Writer for the given output directory.
func NewWriter(config WriterConfig) *Writer {
	if config.SystemDir == "" {
		config.SystemDir = ".bindery"
	}
	return &Writer{
		config: config,
		git:    git.NewClient(config.OutDir, config.SystemDir+".lock", config.Logger),
	}
}

// Write persists the composition and returns the written paths relative to
// the output directory.
//
// Workflow:
//  1. Ensure the output directory exists.
//  2. Back up an existing composed document into the system directory.
//  3. Write the document, artifacts, and merged settings atomically.
//  4. Keep the system directory out of version control (.gitignore).
//  5. (If versioned) stage and commit the written files.
func (w *Writer) Write(ctx context.Context, comp *core.Composition) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.config.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if backup, err := w.backupDocument(); err != nil {
		return nil, fmt.Errorf("failed to back up existing document: %w", err)
	} else if backup != "" && w.config.Logger != nil {
		w.config.Logger.Debug("backed up previous document", "path", backup)
	}

	var written []string
	writeFile := func(rel string, data []byte) error {
		full := filepath.Join(w.config.OutDir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
		if err := WriteFileAtomic(full, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
		written = append(written, rel)
		return nil
	}

	if err := writeFile(OutputDocument, []byte(comp.Document)); err != nil {
		return written, err
	}

	for _, a := range comp.Agents {
		data, err := serializeFrontmatter(agentHeader(a), a.Content)
		if err != nil {
			return written, fmt.Errorf("failed to serialize agent %s: %w", a.Name, err)
		}
		if err := writeFile(artifactPath(AgentsDir, a.Name), data); err != nil {
			return written, err
		}
	}
	for _, c := range comp.Commands {
		data, err := serializeFrontmatter(commandHeader(c), c.Content)
		if err != nil {
			return written, fmt.Errorf("failed to serialize command %s: %w", c.Name, err)
		}
		if err := writeFile(artifactPath(CommandsDir, c.Name), data); err != nil {
			return written, err
		}
	}
	for _, h := range comp.Hooks {
		data, err := serializeFrontmatter(hookHeader(h), h.Content)
		if err != nil {
			return written, fmt.Errorf("failed to serialize hook %s: %w", h.Name, err)
		}
		if err := writeFile(artifactPath(HooksDir, h.Name), data); err != nil {
			return written, err
		}
	}

	if comp.Settings != nil {
		merged, err := w.mergeExistingSettings(comp.Settings)
		if err != nil {
			return written, err
		}
		data, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return written, fmt.Errorf("failed to serialize settings: %w", err)
		}
		if err := writeFile(SettingsFilename, append(data, '\n')); err != nil {
			return written, err
		}
	}

	if _, err := w.ensureIgnore(); err != nil {
		return written, fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if w.config.Versioned {
		if err := w.commit(written); err != nil {
			return written, err
		}
	}

	if w.config.Logger != nil {
		w.config.Logger.Debug("composition written", "dir", w.config.OutDir, "files", len(written))
	}
	return written, nil
}

// backupDocument copies an existing composed document into the system
// directory before it is replaced. Returns the backup path, or "" when
// there was nothing to back up.
func (w *Writer) backupDocument() (string, error) {
	src := filepath.Join(w.config.OutDir, OutputDocument)
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	dir := filepath.Join(w.config.OutDir, w.config.SystemDir, "backups")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, fmt.Sprintf("%s.%d", OutputDocument, time.Now().Unix()))
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", err
	}
	return dst, nil
}

// mergeExistingSettings deep-merges the composed settings onto whatever
// settings object the output directory already holds.
func (w *Writer) mergeExistingSettings(settings core.Settings) (core.Settings, error) {
	path := filepath.Join(w.config.OutDir, SettingsFilename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read existing settings: %w", err)
	}

	var existing core.Settings
	if err := json.Unmarshal(data, &existing); err != nil {
		return nil, fmt.Errorf("existing settings are not valid json: %w", err)
	}
	return compose.MergeSettings(existing, settings), nil
}

// ensureIgnore keeps the system directory out of version control.
func (w *Writer) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(w.config.OutDir, ".gitignore")
	ignoreEntry := w.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// commit stages and commits the written files.
func (w *Writer) commit(files []string) error {
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if !w.git.IsRepo() {
		if err := w.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}

	unlock, err := w.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	toAdd := append([]string{".gitignore"}, files...)
	if err := w.git.Add(toAdd...); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	if err := w.git.Commit(fmt.Sprintf("compose %d file(s)", len(files))); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

func agentHeader(a core.Agent) map[string]any {
	m := map[string]any{"name": a.Name}
	if a.Description != "" {
		m["description"] = a.Description
	}
	if a.Model != "" {
		m["model"] = a.Model
	}
	if len(a.Tools) > 0 {
		m["tools"] = a.Tools
	}
	if a.Source != "" {
		m["source"] = a.Source
	}
	return m
}

func commandHeader(c core.Command) map[string]any {
	m := map[string]any{"name": c.Name}
	if c.Description != "" {
		m["description"] = c.Description
	}
	if c.ArgumentHint != "" {
		m["argument-hint"] = c.ArgumentHint
	}
	if len(c.AllowedTools) > 0 {
		m["allowed-tools"] = c.AllowedTools
	}
	if c.Source != "" {
		m["source"] = c.Source
	}
	return m
}

func hookHeader(h core.Hook) map[string]any {
	m := map[string]any{"name": h.Name}
	if h.Description != "" {
		m["description"] = h.Description
	}
	if h.Event != "" {
		m["event"] = h.Event
	}
	if h.Matcher != "" {
		m["matcher"] = h.Matcher
	}
	if h.Source != "" {
		m["source"] = h.Source
	}
	return m
}

// artifactPath places one artifact inside its category directory. Artifact
// names travel through filepath.Base so a hostile name cannot escape the
// output tree.
func artifactPath(dir, name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if !strings.HasSuffix(base, ".md") {
		base += ".md"
	}
	return filepath.Join(dir, base)
}
