package wiz

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// ConfigName is the default config file path used by the CLI's -config
// flag (relative to the working directory), grounded in the teacher's
// RegistryConfigName convention.
const ConfigName = "wizconfig.toml"

// Config holds the optional defaults read from a wizconfig.toml file:
// default registry search paths, a default recursion depth, and default
// system constraints applied when none are given on the command line.
type Config struct {
	Paths    []string
	MaxDepth int
	System   map[string]string
}

type rawConfig struct {
	Registry rawRegistryConfig `toml:"registry"`
	System   map[string]string `toml:"system"`
}

type rawRegistryConfig struct {
	Paths    []string `toml:"paths"`
	MaxDepth int      `toml:"max-depth"`
}

// LoadConfig reads and parses a wizconfig.toml file. A missing file is not
// an error: LoadConfig returns a zero-value Config with MaxDepth defaulted
// to -1 (unlimited), matching Discover's "no limit" convention.
func LoadConfig(path string) (Config, error) {
	cfg := Config{MaxDepth: -1}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config file %s", path)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %s as TOML", path)
	}

	cfg.Paths = raw.Registry.Paths
	cfg.System = raw.System
	if raw.Registry.MaxDepth != 0 {
		cfg.MaxDepth = raw.Registry.MaxDepth
	}
	return cfg, nil
}
