// Package buildinfo carries the version stamp linked into release builds.
package buildinfo

import "runtime/debug"

// Overridden at link time, for example:
//
//	-ldflags "-X github.com/offlinefirst/uiatrace/internal/buildinfo.version=v0.3.0"
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Version reports the release version, falling back to the module version
// the toolchain embeds.
func Version() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// Commit reports the source revision, falling back to the vcs metadata the
// toolchain embeds.
func Commit() string {
	if commit != "" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return ""
}

// Date reports the build date when one was stamped.
func Date() string {
	return date
}
