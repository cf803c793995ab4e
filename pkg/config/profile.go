package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is the optional per-user CLI profile. Values set here override
// environment defaults for interactive use; automation should prefer the
// environment variables directly.
type Profile struct {
	BaseURL    string `yaml:"base_url,omitempty"`
	DefaultOrg string `yaml:"default_org,omitempty"`
	// Quiet suppresses toast-style error output in the CLI.
	Quiet bool `yaml:"quiet,omitempty"`
}

// DefaultProfilePath returns the conventional profile location,
// ~/.infrasync.yaml. The empty string is returned when the home directory
// cannot be determined.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".infrasync.yaml")
}

// LoadProfile reads and decodes the profile at path. A missing file yields a
// zero Profile and no error; a present but malformed file is reported as
// ErrInvalidProfile so the CLI can tell the user which file to fix.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, err
	}

	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, errors.Join(ErrInvalidProfile, err)
	}
	return p, nil
}
