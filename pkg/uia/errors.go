package uia

import "errors"

// ErrUnsupportedPlatform indicates the host OS cannot supply UI Automation
// events; callers fall back to the synthetic source or abort startup.
var ErrUnsupportedPlatform = errors.New("UI Automation event source requires windows")

// ErrNotStreaming reports an Emit against a synthetic source that has no
// active stream.
var ErrNotStreaming = errors.New("synthetic source has no active stream")
