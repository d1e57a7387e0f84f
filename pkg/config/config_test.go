package config

import (
	"testing"
	"time"
)

// clearEnv blanks every configuration variable so ambient settings on the
// test host cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, suffix := range []string{
		"OUTPUT_DIR", "APPEND", "POINTER_INTERVAL", "BROWSER_INTERVAL",
		"SYNTHETIC", "PROC_CACHE", "SESSION_DB", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(EnvPrefix+suffix, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Output.Dir != "" {
		t.Fatalf("expected empty output dir, got %q", cfg.Output.Dir)
	}
	if cfg.Output.Append {
		t.Fatalf("expected append disabled by default")
	}
	if cfg.Capture.PointerInterval != 50*time.Millisecond {
		t.Fatalf("unexpected default pointer interval: %v", cfg.Capture.PointerInterval)
	}
	if cfg.Capture.BrowserInterval != time.Second {
		t.Fatalf("unexpected default browser interval: %v", cfg.Capture.BrowserInterval)
	}
	if cfg.Capture.Synthetic {
		t.Fatalf("expected synthetic source disabled by default")
	}
	if cfg.Capture.ProcCacheSize != 256 {
		t.Fatalf("unexpected default process cache size: %d", cfg.Capture.ProcCacheSize)
	}
	if cfg.Session.Disabled() {
		t.Fatalf("expected session registry enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected default logging: %q %q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"OUTPUT_DIR", "/tmp/traces")
	t.Setenv(EnvPrefix+"APPEND", "true")
	t.Setenv(EnvPrefix+"POINTER_INTERVAL", "25ms")
	t.Setenv(EnvPrefix+"BROWSER_INTERVAL", "2s")
	t.Setenv(EnvPrefix+"SYNTHETIC", "1")
	t.Setenv(EnvPrefix+"PROC_CACHE", "64")
	t.Setenv(EnvPrefix+"SESSION_DB", "off")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "DEBUG")
	t.Setenv(EnvPrefix+"LOG_FORMAT", "text")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Output.Dir != "/tmp/traces" {
		t.Fatalf("unexpected output dir: %q", cfg.Output.Dir)
	}
	if !cfg.Output.Append {
		t.Fatalf("expected append enabled")
	}
	if cfg.Capture.PointerInterval != 25*time.Millisecond {
		t.Fatalf("unexpected pointer interval: %v", cfg.Capture.PointerInterval)
	}
	if cfg.Capture.BrowserInterval != 2*time.Second {
		t.Fatalf("unexpected browser interval: %v", cfg.Capture.BrowserInterval)
	}
	if !cfg.Capture.Synthetic {
		t.Fatalf("expected synthetic source enabled")
	}
	if cfg.Capture.ProcCacheSize != 64 {
		t.Fatalf("unexpected process cache size: %d", cfg.Capture.ProcCacheSize)
	}
	if !cfg.Session.Disabled() {
		t.Fatalf("expected session registry disabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized log level, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
}

func TestFromEnvMalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"POINTER_INTERVAL", "fast")
	t.Setenv(EnvPrefix+"BROWSER_INTERVAL", "-3s")
	t.Setenv(EnvPrefix+"PROC_CACHE", "lots")
	t.Setenv(EnvPrefix+"APPEND", "maybe")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Capture.PointerInterval != 50*time.Millisecond {
		t.Fatalf("expected fallback pointer interval, got %v", cfg.Capture.PointerInterval)
	}
	if cfg.Capture.BrowserInterval != time.Second {
		t.Fatalf("expected fallback browser interval, got %v", cfg.Capture.BrowserInterval)
	}
	if cfg.Capture.ProcCacheSize != 256 {
		t.Fatalf("expected fallback process cache size, got %d", cfg.Capture.ProcCacheSize)
	}
	if cfg.Output.Append {
		t.Fatalf("expected fallback append value")
	}
}

func TestFromEnvRejectsUnknownLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"LOG_LEVEL", "verbose")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for unsupported log level")
	}
}

func TestValidateRejectsBadIntervals(t *testing.T) {
	cfg := Default()
	cfg.Capture.PointerInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero pointer interval")
	}

	cfg = Default()
	cfg.Capture.BrowserInterval = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative browser interval")
	}

	cfg = Default()
	cfg.Capture.ProcCacheSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero cache size")
	}
}

func TestSessionDisabled(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"off", true},
		{"OFF", true},
		{" off ", true},
		{"", false},
		{"/var/lib/uiatrace/sessions.db", false},
	}
	for _, tc := range cases {
		got := SessionConfig{DBPath: tc.path}.Disabled()
		if got != tc.want {
			t.Fatalf("Disabled(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
