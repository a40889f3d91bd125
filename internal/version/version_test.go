package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestEngineIsSemver(t *testing.T) {
	if Engine != "1.0.0" {
		t.Fatalf("Engine = %q", Engine)
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	if got := Colored(); got != Engine {
		t.Fatalf("Colored() = %q, want %q", got, Engine)
	}
}

func TestColoredWithColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	got := Colored()
	if got == Engine {
		t.Fatal("expected escape sequences around version parts")
	}
	for _, part := range []string{"1", "0"} {
		if !strings.Contains(got, part) {
			t.Fatalf("Colored() = %q lost %q", got, part)
		}
	}
}

func TestBuildMetadataOverridable(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"
	if GitCommit != "abc123def456" || BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatal("build metadata not overridable")
	}
}
