// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

func TestInitializeDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	f := GetBuildFlags()
	if f.Name == "" {
		t.Error("Name should never be empty after Initialize()")
	}
	if f.Version == "" {
		t.Error("Version should never be empty after Initialize()")
	}
}

func TestInitializeOverrides(t *testing.T) {
	origName, origVersion := buildName, buildVersion
	defer func() {
		buildName, buildVersion = origName, origVersion
		_ = Initialize()
	}()

	buildName = "customname"
	buildVersion = "1.2.3"
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	f := GetBuildFlags()
	if f.Name != "customname" {
		t.Errorf("Name = %q, expected %q", f.Name, "customname")
	}
	if f.Version != "1.2.3" {
		t.Errorf("Version = %q, expected %q", f.Version, "1.2.3")
	}
}

func TestFlagsString(t *testing.T) {
	f := &Flags{Name: "nitemix", Version: "0.1.0", Commit: "abc123", Time: "2026-01-01"}
	s := f.String()
	for _, want := range []string{"nitemix", "0.1.0", "abc123", "2026-01-01"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
