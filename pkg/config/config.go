// Package config loads the capture configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is shared by every configuration variable.
const EnvPrefix = "UIATRACE_"

// Config captures the user-adjustable knobs for a capture run.
type Config struct {
	Output  OutputConfig
	Capture CaptureConfig
	Session SessionConfig
	Logging LoggingConfig
}

// OutputConfig controls where the JSON artifacts land and how existing
// artifacts are treated.
type OutputConfig struct {
	// Dir overrides the artifact directory. Empty selects the resources
	// directory beside the executable.
	Dir string
	// Append merges the session into existing artifacts instead of
	// replacing them.
	Append bool
}

// CaptureConfig tunes the event and polling pipelines.
type CaptureConfig struct {
	PointerInterval time.Duration
	BrowserInterval time.Duration
	// Synthetic swaps the system event source for the in-process one used
	// in development and tests.
	Synthetic bool
	// ProcCacheSize bounds the pid to process name cache.
	ProcCacheSize int
}

// SessionConfig locates the run registry.
type SessionConfig struct {
	// DBPath overrides the registry location. Empty selects sessions.db in
	// the artifact directory; "off" disables the registry.
	DBPath string
}

// Disabled reports whether the run registry is switched off.
func (c SessionConfig) Disabled() bool {
	return strings.EqualFold(strings.TrimSpace(c.DBPath), "off")
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string
	Format string
}

// Default returns the baseline configuration used when no overrides are
// supplied.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Dir:    "",
			Append: false,
		},
		Capture: CaptureConfig{
			PointerInterval: 50 * time.Millisecond,
			BrowserInterval: time.Second,
			Synthetic:       false,
			ProcCacheSize:   256,
		},
		Session: SessionConfig{
			DBPath: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// FromEnv builds the configuration from UIATRACE_* environment variables,
// falling back to defaults for anything unset.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.Output.Dir = getEnv(EnvPrefix+"OUTPUT_DIR", cfg.Output.Dir)
	cfg.Output.Append = getBoolEnv(EnvPrefix+"APPEND", cfg.Output.Append)

	cfg.Capture.PointerInterval = getDurationEnv(EnvPrefix+"POINTER_INTERVAL", cfg.Capture.PointerInterval)
	cfg.Capture.BrowserInterval = getDurationEnv(EnvPrefix+"BROWSER_INTERVAL", cfg.Capture.BrowserInterval)
	cfg.Capture.Synthetic = getBoolEnv(EnvPrefix+"SYNTHETIC", cfg.Capture.Synthetic)
	cfg.Capture.ProcCacheSize = getIntEnv(EnvPrefix+"PROC_CACHE", cfg.Capture.ProcCacheSize)

	cfg.Session.DBPath = getEnv(EnvPrefix+"SESSION_DB", cfg.Session.DBPath)

	cfg.Logging.Level = getEnv(EnvPrefix+"LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv(EnvPrefix+"LOG_FORMAT", cfg.Logging.Format)

	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if c.Capture.PointerInterval <= 0 {
		return errors.New("pointer interval must be positive")
	}
	if c.Capture.BrowserInterval <= 0 {
		return errors.New("browser interval must be positive")
	}
	if c.Capture.ProcCacheSize <= 0 {
		return errors.New("process cache size must be positive")
	}
	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalize() error {
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	c.Session.DBPath = strings.TrimSpace(c.Session.DBPath)

	level, err := NormalizeLogLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	c.Logging.Level = level

	format, err := NormalizeFormat(c.Logging.Format)
	if err != nil {
		return err
	}
	c.Logging.Format = format
	return nil
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv gets a bool environment variable with a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable with a default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable with a default value.
// Values use Go duration syntax, for example "50ms" or "2s"; malformed or
// non-positive values fall back to the default.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
