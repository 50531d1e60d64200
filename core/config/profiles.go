package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is a named connection entry in the profiles file.
type Profile struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	HTTPS       bool   `yaml:"https"`
	User        string `yaml:"user"`
	Pass        string `yaml:"pass"`
	Consistency string `yaml:"consistency"`
}

type profilesFile struct {
	Connections map[string]Profile `yaml:"connections"`
}

// DefaultProfilesPath returns the conventional profiles file location,
// ~/.rqport.yaml, or an empty string when the home directory is unknown.
func DefaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rqport.yaml")
}

// LoadProfile reads the named connection profile from the YAML file at path
// and merges it over the base configuration. Empty profile fields keep the
// base value.
func LoadProfile(path, name string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("unable to read profiles file: %w", err)
	}

	var pf profilesFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return base, fmt.Errorf("invalid profiles file %s: %w", path, err)
	}

	p, ok := pf.Connections[name]
	if !ok {
		names := make([]string, 0, len(pf.Connections))
		for n := range pf.Connections {
			names = append(names, n)
		}
		return base, fmt.Errorf("profile %q not found in %s (available: %s)",
			name, path, strings.Join(names, ", "))
	}

	cfg := base
	if p.Host != "" {
		cfg.Host = p.Host
	}
	if p.Port != 0 {
		cfg.Port = p.Port
	}
	if p.HTTPS {
		cfg.HTTPS = true
	}
	if p.User != "" {
		cfg.User = p.User
	}
	if p.Pass != "" {
		cfg.Pass = p.Pass
	}
	if p.Consistency != "" {
		cfg.Consistency = p.Consistency
	}
	return cfg, nil
}
