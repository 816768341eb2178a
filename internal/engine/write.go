package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// outputMode is the permission of files produced by the engine.
const outputMode os.FileMode = 0644

// writeAtomic writes through a temp file in the destination directory and
// renames it into place once fn and all flushes succeeded. On failure the
// temp file is removed and nothing appears at path.
func writeAtomic(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	closed := false
	defer func() {
		if err != nil {
			if !closed {
				tmpFile.Close()
			}
			os.Remove(tmpPath)
		}
	}()

	buffered := bufio.NewWriter(tmpFile)
	if err = fn(buffered); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err = buffered.Flush(); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	closed = true
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, outputMode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
