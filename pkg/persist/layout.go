// Package persist serializes the session buffers into the JSON artifacts
// the downstream schema-inference and playback tooling consume.
package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact file names, fixed by the downstream consumers.
const (
	UIALogFile      = "uia_log.json"
	MouseClicksFile = "mouse_clicks.json"
	BrowserURLsFile = "browser_urls.json"
	SessionDBFile   = "sessions.db"
)

// DefaultDirName is the artifact directory created beside the binary.
const DefaultDirName = "resources"

// Layout holds the absolute artifact locations for a run.
type Layout struct {
	Dir        string
	UIALogPath string
	ClicksPath string
	URLsPath   string
	SessionDB  string
}

// BuildLayout derives the artifact paths under dir.
func BuildLayout(dir string) Layout {
	return Layout{
		Dir:        dir,
		UIALogPath: filepath.Join(dir, UIALogFile),
		ClicksPath: filepath.Join(dir, MouseClicksFile),
		URLsPath:   filepath.Join(dir, BrowserURLsFile),
		SessionDB:  filepath.Join(dir, SessionDBFile),
	}
}

// DefaultDir resolves the artifact directory relative to the running binary.
// When the executable path is unavailable the directory is created relative
// to the working directory instead.
func DefaultDir() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(filepath.Dir(exe), DefaultDirName)
}

// EnsureFilesystem creates the artifact directory on demand.
func EnsureFilesystem(layout Layout) error {
	if strings.TrimSpace(layout.Dir) == "" {
		return errors.New("artifact directory must not be empty")
	}
	if err := os.MkdirAll(layout.Dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	return nil
}
