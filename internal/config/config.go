package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color modes for diagnostic rendering.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents a tycheck.yaml project file.
type Config struct {
	// SourceDirectory is the root of the module tree, relative to the config file.
	// Module `A.B` lives at <SourceDirectory>/A/B.ty.yaml.
	SourceDirectory string `yaml:"sourceDirectory,omitempty"`

	// Color is one of auto, always, never. Defaults to auto.
	Color string `yaml:"color,omitempty"`

	// Database is an optional SQLite file recording every check run.
	Database string `yaml:"database,omitempty"`

	// Verbose enables per-stage timing logs.
	Verbose bool `yaml:"verbose,omitempty"`

	// Exclude lists glob patterns (matched against paths relative to SourceDirectory)
	// of module files to skip.
	Exclude []string `yaml:"exclude,omitempty"`

	// dir is the directory containing the config file; relative paths are resolved against it.
	dir string
}

// Default returns the configuration used when no tycheck.yaml is found.
func Default(dir string) *Config {
	cfg := &Config{dir: dir}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a tycheck.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses tycheck.yaml content from bytes.
// The path argument is used for error messages and to resolve relative paths.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfig searches for tycheck.yaml starting from dir and walking up
// to parent directories. Returns an empty path and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be one of %s, %s, %s; got %q", path, ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	if filepath.IsAbs(c.SourceDirectory) {
		return nil
	}
	if strings.HasPrefix(filepath.Clean(c.SourceDirectory), "..") {
		return fmt.Errorf("%s: sourceDirectory %q escapes the project directory", path, c.SourceDirectory)
	}
	for i, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%s: exclude[%d]: %w", path, i, err)
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.SourceDirectory == "" {
		c.SourceDirectory = "."
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if os.Getenv("TYCHECK_VERBOSE") == "1" {
		c.Verbose = true
	}
}

// SourceRoot returns the absolute-or-config-relative module tree root.
func (c *Config) SourceRoot() string {
	if filepath.IsAbs(c.SourceDirectory) {
		return c.SourceDirectory
	}
	return filepath.Join(c.dir, c.SourceDirectory)
}

// DatabasePath returns the history database location, or "" when disabled.
func (c *Config) DatabasePath() string {
	if c.Database == "" || filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(c.dir, c.Database)
}

// IsExcluded reports whether a module file (relative to SourceRoot) is skipped.
func (c *Config) IsExcluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range c.Exclude {
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}
