package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"langid/internal/classify"
	"langid/internal/testkit"
)

func TestLoadFull(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{
		FileName: `
[model]
path = "models/custom"

[detector]
weights = [1.0, 1.0, 2.0]
floor = 0.2
epsilon = 0.05
calibration = "raw"

[batch]
jobs = 3
`,
	})
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ModelPath != filepath.Join(dir, "models", "custom") {
		t.Fatalf("ModelPath = %q", cfg.ModelPath)
	}
	want := classify.Config{
		Weights:     classify.Weights{1, 1, 2},
		Floor:       0.2,
		Epsilon:     0.05,
		Calibration: classify.CalibrationRaw,
	}
	if cfg.Detector != want {
		t.Fatalf("Detector = %+v", cfg.Detector)
	}
	if cfg.Jobs != 3 {
		t.Fatalf("Jobs = %d", cfg.Jobs)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{FileName: "[detector]\nfloor = 0.3\n"})
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	want := classify.DefaultConfig()
	want.Floor = 0.3
	if cfg.Detector != want || cfg.ModelPath != "" || cfg.Jobs != 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"short weights", "[detector]\nweights = [1.0, 2.0]\n", ErrWeightsLength},
		{"empty model path", "[model]\npath = \"  \"\n", ErrModelPathEmpty},
		{"negative jobs", "[batch]\njobs = -1\n", ErrNegativeJobs},
		{"unknown key", "[detector]\nthreshold = 0.5\n", ErrUnknownKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testkit.WriteFiles(t, map[string]string{FileName: tt.content})
			if _, err := Load(filepath.Join(dir, FileName)); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	dir := testkit.WriteFiles(t, map[string]string{FileName: "[detector]\nfloor = 3.0\n"})
	if _, err := Load(filepath.Join(dir, FileName)); err == nil {
		t.Fatal("floor above 1 accepted")
	}
	dir = testkit.WriteFiles(t, map[string]string{FileName: "[detector]\ncalibration = \"loud\"\n"})
	if _, err := Load(filepath.Join(dir, FileName)); err == nil {
		t.Fatal("unknown calibration accepted")
	}
}

func TestFindWalksUp(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{FileName: "[batch]\njobs = 2\n"})
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok || path != filepath.Join(dir, FileName) {
		t.Fatalf("Find = %q, %v, %v", path, ok, err)
	}
	cfg, err := Discover(nested)
	if err != nil || cfg.Jobs != 2 {
		t.Fatalf("Discover = %+v, %v", cfg, err)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" {
		t.Skipf("found %s above the temp dir", cfg.Path)
	}
	if cfg.Detector != classify.DefaultConfig() || cfg.ModelPath != "" {
		t.Fatalf("default cfg = %+v", cfg)
	}
}
