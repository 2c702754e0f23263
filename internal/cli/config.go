package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name looked up in the scanned directory when no config
// path is given
const ConfigFile = ".addendum.yaml"

// Resolver strategies accepted in the config file
const (
	ResolverDefault   = "default"
	ResolverNamespace = "namespace"
)

// Config holds the CLI configuration
type Config struct {
	// Resolver selects the tag resolution strategy: default or namespace
	Resolver string `yaml:"resolver"`

	// Ignore lists annotation type names skipped while building
	Ignore []string `yaml:"ignore"`

	AliasTag     string `yaml:"alias_tag"`
	NamespaceTag string `yaml:"namespace_tag"`

	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the configuration used without a config file
func DefaultConfig() *Config {
	return &Config{
		Resolver:     ResolverDefault,
		AliasTag:     "Alias",
		NamespaceTag: "Namespace",
	}
}

// LoadConfig reads path, or ConfigFile inside dir when path is empty. A
// missing default file yields DefaultConfig; a missing explicit path is an
// error.
func LoadConfig(path, dir string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, ConfigFile)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the resolver strategy and meta tags
func (c *Config) Validate() error {
	switch c.Resolver {
	case "":
		c.Resolver = ResolverDefault
	case ResolverDefault, ResolverNamespace:
	default:
		return fmt.Errorf("unknown resolver %q (want %s or %s)", c.Resolver, ResolverDefault, ResolverNamespace)
	}
	if c.AliasTag == "" || c.NamespaceTag == "" {
		return errors.New("alias_tag and namespace_tag must not be empty")
	}
	return nil
}
