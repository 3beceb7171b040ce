package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "BUNDLE.md")

		if err := WriteFileAtomic(target, []byte("hello"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		data, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("expected 'hello', got %q", string(data))
		}
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "settings.json")
		if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := WriteFileAtomic(target, []byte("new"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		data, _ := os.ReadFile(target)
		if string(data) != "new" {
			t.Errorf("expected 'new', got %q", string(data))
		}
	})

	t.Run("Respects Permissions", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "index.json")

		if err := WriteFileAtomic(target, []byte("{}"), 0600); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		info, err := os.Stat(target)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "missing", "BUNDLE.md")

		if err := WriteFileAtomic(target, []byte("x"), 0644); err == nil {
			t.Error("expected error for missing directory, got nil")
		}
	})

	t.Run("Leaves No Staging Files Behind", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "BUNDLE.md")

		if err := WriteFileAtomic(target, []byte("done"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir failed: %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".bindery-tmp-") {
				t.Errorf("staging file left behind: %s", e.Name())
			}
		}
	})
}
