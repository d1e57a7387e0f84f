//go:build !windows

package uia

import (
	"context"
	"log/slog"
)

// SystemSource requires the windows accessibility runtime and cannot be
// constructed on other platforms. Development builds use the synthetic
// source instead.
type SystemSource struct {
	logger *slog.Logger
}

// NewSystemSource reports ErrUnsupportedPlatform so callers fail before any
// session state is created.
func NewSystemSource(opts SystemOptions) (*SystemSource, error) {
	return nil, ErrUnsupportedPlatform
}

// Stream reports that no system event source exists on this platform.
func (s *SystemSource) Stream(ctx context.Context, emit func(RawEvent) error) error {
	return ErrUnsupportedPlatform
}
