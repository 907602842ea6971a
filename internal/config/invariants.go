package config

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bulwarkhq/bulwark/internal/rules"
)

// invariantsFile is the shape of .bulwark/invariants.yml.
type invariantsFile struct {
	Invariants []rules.Invariant `yaml:"invariants"`
}

// CacheDir returns the per-project cache directory under the system temp
// dir, creating it if needed. Projects are keyed by a hash of their root
// path so concurrent runs against different repos never collide.
func CacheDir(projectRoot string) (string, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", err
	}
	hash := fmt.Sprintf("%x", md5.Sum([]byte(abs)))
	dir := filepath.Join(os.TempDir(), "bulwark-cache-"+hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	return dir, nil
}

// InvariantsPath returns the invariants file location for a project root.
func InvariantsPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".bulwark", "invariants.yml")
}

// LoadInvariants parses the project's invariants.yml, keeping a JSON cache
// that is reused while it is newer than the YAML. A corrupt cache falls
// back to re-parsing.
func LoadInvariants(projectRoot string) ([]rules.Invariant, error) {
	ymlPath := InvariantsPath(projectRoot)
	ymlInfo, err := os.Stat(ymlPath)
	if err != nil {
		return nil, fmt.Errorf("invariants.yml not found: %s", ymlPath)
	}

	cacheDir, err := CacheDir(projectRoot)
	if err != nil {
		return nil, err
	}
	cachePath := filepath.Join(cacheDir, "invariants.json")

	if cacheInfo, err := os.Stat(cachePath); err == nil && cacheInfo.ModTime().After(ymlInfo.ModTime()) {
		if data, err := os.ReadFile(cachePath); err == nil {
			var cached []rules.Invariant
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	data, err := os.ReadFile(ymlPath)
	if err != nil {
		return nil, fmt.Errorf("read invariants.yml: %w", err)
	}
	var parsed invariantsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse invariants.yml: %w", err)
	}
	invariants := parsed.Invariants
	if invariants == nil {
		invariants = []rules.Invariant{}
	}

	// Best-effort cache write; a read-only temp dir just means re-parsing.
	if encoded, err := json.Marshal(invariants); err == nil {
		_ = os.WriteFile(cachePath, encoded, 0o644)
	}

	return invariants, nil
}
