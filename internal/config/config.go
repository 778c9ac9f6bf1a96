package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and user config dirs.
const FileName = ".ptrmux.yaml"

// FileConfig represents the contents of .ptrmux.yaml. Pointer fields
// distinguish "unset" from an explicit zero.
type FileConfig struct {
	MaxLookahead int    `yaml:"max_lookahead"`
	MaxMultiple  int    `yaml:"max_multiple"`
	Policy       string `yaml:"policy"`
	Format       string `yaml:"format"`
	Theme        string `yaml:"theme"`
	SampleCoords *int   `yaml:"sample_coords"`
	Top          *int   `yaml:"top"`
	Workers      int    `yaml:"workers"`
	Store        string `yaml:"store"`
	NoColor      bool   `yaml:"no_color"`
}

// LoadFile reads a config file. An explicit path must exist; an empty path
// searches the working directory, then the user config directory, and
// returns an empty config when neither has one. The second result is the
// path actually read, or "".
func LoadFile(path string) (*FileConfig, string, error) {
	explicit := path != ""
	if !explicit {
		path = getConfigPath()
		if path == "" {
			return &FileConfig{}, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &FileConfig{}, "", nil
		}
		return nil, "", fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, "", fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, path, nil
}

// getConfigPath tries to find the .ptrmux.yaml configuration file.
// It checks local directory first, then XDG UserConfigDir (if valid).
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	// An empty or root config dir is not usable for the per-user lookup.
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "ptrmux", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
