//go:build windows

package atomicfile

import "os"

// osReplace renames over an existing destination. os.Rename uses
// MoveFileEx with MOVEFILE_REPLACE_EXISTING on Windows.
func osReplace(tmpPath, dest string) error {
	return os.Rename(tmpPath, dest)
}

// syncDir is a no-op; Windows does not support syncing directory handles.
func syncDir(string) error {
	return nil
}
