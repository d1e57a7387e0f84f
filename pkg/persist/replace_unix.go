//go:build !windows

package persist

import (
	"os"
	"path/filepath"
)

func replaceFile(tmpPath, finalPath string) error {
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return err
	}
	// Crash-consistency: make the directory entry durable too.
	if d, err := os.Open(filepath.Dir(finalPath)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
