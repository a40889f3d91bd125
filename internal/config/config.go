// Package config reads langid.toml, the optional per-directory settings file
// for the command-line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"langid/internal/classify"
)

// FileName is the name searched for by Find.
const FileName = "langid.toml"

var (
	// ErrWeightsLength indicates that [detector].weights does not hold one value per order.
	ErrWeightsLength = errors.New("[detector].weights must have 3 values")
	// ErrModelPathEmpty indicates an explicitly empty [model].path.
	ErrModelPathEmpty = errors.New("[model].path is empty")
	// ErrNegativeJobs indicates a negative [batch].jobs.
	ErrNegativeJobs = errors.New("[batch].jobs must be >= 0")
	// ErrUnknownKey indicates a key the file format does not define.
	ErrUnknownKey = errors.New("unknown key")
)

// Config is the resolved content of langid.toml.
type Config struct {
	// Path is the file the values came from; empty for defaults.
	Path string
	// ModelPath is absolute when set from a file.
	ModelPath string
	Detector  classify.Config
	Jobs      int
}

// Default returns the settings used when no langid.toml exists.
func Default() Config {
	return Config{Detector: classify.DefaultConfig()}
}

type fileModel struct {
	Path string `toml:"path"`
}

type fileDetector struct {
	Weights     []float64 `toml:"weights"`
	Floor       float64   `toml:"floor"`
	Epsilon     float64   `toml:"epsilon"`
	Calibration string    `toml:"calibration"`
}

type fileBatch struct {
	Jobs int `toml:"jobs"`
}

type file struct {
	Model    fileModel    `toml:"model"`
	Detector fileDetector `toml:"detector"`
	Batch    fileBatch    `toml:"batch"`
}

// Find walks up from startDir to locate langid.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses path. Keys that are absent keep their defaults; a relative
// [model].path is resolved against the file's directory.
func Load(path string) (Config, error) {
	var raw file
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: %w %q", path, ErrUnknownKey, undecoded[0].String())
	}

	cfg := Default()
	cfg.Path = path

	if meta.IsDefined("model", "path") {
		p := strings.TrimSpace(raw.Model.Path)
		if p == "" {
			return Config{}, fmt.Errorf("%s: %w", path, ErrModelPathEmpty)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		cfg.ModelPath = filepath.Clean(p)
	}

	det := &cfg.Detector
	if meta.IsDefined("detector", "weights") {
		if len(raw.Detector.Weights) != len(det.Weights) {
			return Config{}, fmt.Errorf("%s: %w", path, ErrWeightsLength)
		}
		copy(det.Weights[:], raw.Detector.Weights)
	}
	if meta.IsDefined("detector", "floor") {
		det.Floor = raw.Detector.Floor
	}
	if meta.IsDefined("detector", "epsilon") {
		det.Epsilon = raw.Detector.Epsilon
	}
	if meta.IsDefined("detector", "calibration") {
		c, err := classify.ParseCalibration(raw.Detector.Calibration)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		det.Calibration = c
	}
	if err := det.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: [detector]: %w", path, err)
	}

	if meta.IsDefined("batch", "jobs") {
		if raw.Batch.Jobs < 0 {
			return Config{}, fmt.Errorf("%s: %w", path, ErrNegativeJobs)
		}
		cfg.Jobs = raw.Batch.Jobs
	}
	return cfg, nil
}

// Discover finds and loads langid.toml above startDir, returning Default
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
