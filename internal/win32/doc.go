// Package win32 wraps the user32 calls behind the pointer poller, the
// browser poller, and the foreground process filter.
package win32
