package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredWithoutColor(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		Version = tt.version
		if got := Colored(); got != tt.want {
			t.Errorf("Colored() with %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestCurrentTrims(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = " 1.2.3 "
	GitCommit = "abc123def456\n"
	BuildDate = ""

	info := Current()
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" || info.BuildDate != "" {
		t.Fatalf("Current() = %+v", info)
	}
}
