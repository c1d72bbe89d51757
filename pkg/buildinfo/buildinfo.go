// Package buildinfo exposes the version stamped into the rgd binary.
package buildinfo

import "runtime/debug"

// BinaryVersion is set at build time via
// -ldflags "-X github.com/fulmenhq/rgd/pkg/buildinfo.BinaryVersion=v0.1.0".
var BinaryVersion = "dev"

// ModuleVersion returns the module version embedded by the Go toolchain, or ""
// when build info is unavailable.
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Version returns BinaryVersion unless it is the "dev" default and the
// toolchain recorded a tagged module version.
func Version() string {
	if BinaryVersion != "dev" {
		return BinaryVersion
	}
	if mv := ModuleVersion(); mv != "" && mv != "(devel)" {
		return mv
	}
	return BinaryVersion
}
