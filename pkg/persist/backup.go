package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// backupPattern names backups after the unix second they were taken.
const backupPattern = "uia_log_backup_%d.json.gz"

// backupExisting compresses a pre-existing uia_log.json beside itself before
// an overwrite destroys it. It runs at most once per writer: the point is to
// protect the previous run's artifact, not this writer's own output.
func (w *Writer) backupExisting() error {
	var err error
	w.backupOnce.Do(func() { err = w.backupNow() })
	return err
}

func (w *Writer) backupNow() error {
	src, err := os.Open(w.layout.UIALogPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open existing log: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf(backupPattern, w.clock().UTC().Unix())
	path := filepath.Join(w.layout.Dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("compress backup: %w", err)
	}
	if err := gz.Close(); err != nil {
		_ = dst.Close()
		return fmt.Errorf("finalise backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}

	w.logger.Info("backed up existing accessibility log", "backup", path)
	return nil
}
