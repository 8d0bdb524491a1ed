// Package atomicfile writes whole files so that readers observe either the
// previous content or the complete new content, never a truncated file.
package atomicfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

const bufSize = 64 * 1024

// WriteFile writes data to a temporary file in path's directory, syncs it and
// renames it over path. On any failure the temporary file is removed and path
// is left as it was.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	bw := bufio.NewWriterSize(tmp, bufSize)
	if _, err := bw.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("failed to flush temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := osReplace(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	// Best effort: persist the rename on filesystems that need a directory sync.
	_ = syncDir(dir)
	return nil
}
