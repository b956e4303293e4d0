// SPDX-License-Identifier: MIT
//
// Package build manages build metadata embedded into the binary at compile
// time via linker flags (-X). The metadata covers the application name, a
// short description, the build timestamp, the Git commit and the semantic
// version, and is surfaced by the CLI and in startup logs.
package build

import "fmt"

type Flags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Package-level variables populated by -ldflags during compilation.
// Development builds fall back to "dev" placeholders.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string

	flags = &Flags{
		Name:        "nitemix",
		Description: "audio-reactive video mixer",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// Flags struct. Call it early in program startup; unset flags keep their
// development defaults.
func Initialize() error {
	if buildName != "" {
		flags.Name = buildName
	}
	if buildTime != "" {
		flags.Time = buildTime
	}
	if buildCommit != "" {
		flags.Commit = buildCommit
	}
	if buildVersion != "" {
		flags.Version = buildVersion
	}
	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *Flags {
	return flags
}

// String returns a single-line summary suitable for --version output.
func (f *Flags) String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
