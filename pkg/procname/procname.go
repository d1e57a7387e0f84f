// Package procname resolves process ids to short executable names.
package procname

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the pid cache; entries are evicted LRU-first.
const DefaultCacheSize = 256

// Options configure the resolver.
type Options struct {
	// Lookup reads the executable image path or name for a pid. Defaults to
	// the platform implementation.
	Lookup    func(pid int32) (string, error)
	CacheSize int
	Logger    *slog.Logger
}

// Resolver caches pid lookups so the process table is not hammered at event
// rate. Pids recycle; the cache accepts that risk for the lifetime of a
// session. Lookups are best-effort: a failure yields an empty name and is
// not cached, so a later event can retry.
type Resolver struct {
	lookup func(pid int32) (string, error)
	cache  *lru.Cache[int32, string]
	logger *slog.Logger
}

// New constructs a resolver.
func New(opts Options) (*Resolver, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[int32, string](size)
	if err != nil {
		return nil, fmt.Errorf("create pid cache: %w", err)
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = systemLookup
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{lookup: lookup, cache: cache, logger: logger}, nil
}

// Name resolves pid to a short process name. Unresolvable pids yield the
// empty string.
func (r *Resolver) Name(pid int32) string {
	if pid <= 0 {
		return ""
	}
	if name, ok := r.cache.Get(pid); ok {
		return name
	}

	image, err := r.lookup(pid)
	if err != nil {
		r.logger.Debug("process name lookup failed", "pid", pid, "error", err)
		return ""
	}

	name := Short(image)
	r.cache.Add(pid, name)
	return name
}

// Short reduces an executable image path to the conventional process name:
// the base name without its .exe suffix. Both path separator styles are
// handled since image paths originate on windows.
func Short(image string) string {
	name := strings.TrimSpace(image)
	if idx := strings.LastIndexAny(name, `\/`); idx >= 0 {
		name = name[idx+1:]
	}
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".exe") {
		name = name[:len(name)-len(ext)]
	}
	return name
}
