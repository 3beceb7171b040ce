package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempFilePattern names in-flight atomic writes. The leading dot keeps a
// pending write invisible to catalog scans and artifact globs until the
// rename lands.
const tempFilePattern = ".bindery-tmp-*"

// WriteFileAtomic replaces filename without ever exposing a partial file:
// the payload is staged in a hidden sibling temp file, synced, then renamed
// over the target. Readers see either the old content or the new one.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePattern)
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", filepath.Base(filename), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op once the rename succeeds.

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", filepath.Base(filename), err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod staged file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(filename), err)
	}
	return nil
}
