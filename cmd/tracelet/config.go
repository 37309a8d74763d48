package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "tracelet.toml"

type captureConfig struct {
	Capture captureSection `toml:"capture"`
}

type captureSection struct {
	ProcessName string `toml:"process_name"`
	Workers     int    `toml:"workers"`
	Output      string `toml:"output"`
}

// findTraceletToml walks from startDir towards the filesystem root and
// returns the first tracelet.toml it finds.
func findTraceletToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
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

// loadCaptureConfig parses a tracelet.toml and rejects values the demo
// could not run with. The returned metadata says which keys the file
// actually set, so callers can tell an absent key from a zero value.
func loadCaptureConfig(path string) (captureConfig, toml.MetaData, error) {
	var cfg captureConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return captureConfig{}, meta, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("capture") {
		return captureConfig{}, meta, fmt.Errorf("%s: missing [capture] section", path)
	}
	if meta.IsDefined("capture", "process_name") && strings.TrimSpace(cfg.Capture.ProcessName) == "" {
		return captureConfig{}, meta, fmt.Errorf("%s: [capture].process_name must not be blank", path)
	}
	if meta.IsDefined("capture", "workers") && cfg.Capture.Workers < 1 {
		return captureConfig{}, meta, fmt.Errorf("%s: [capture].workers must be at least 1, got %d", path, cfg.Capture.Workers)
	}
	if meta.IsDefined("capture", "output") && strings.TrimSpace(cfg.Capture.Output) == "" {
		return captureConfig{}, meta, fmt.Errorf("%s: [capture].output must not be blank", path)
	}
	return cfg, meta, nil
}
