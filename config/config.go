// Package config loads the CLI's YAML defaults file (ifdif.yaml), which
// seeds the --verbose/--extracted/--permmap/--save/--load flags so repeat
// invocations against the same policy pair don't need to repeat them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the global flag set of cmd/ifdif, letting a YAML file on
// disk supply defaults that explicit flags still override.
type Config struct {
	Verbose     bool   `yaml:"verbose"`
	Extracted   bool   `yaml:"extracted"`
	Permmap     string `yaml:"permmap"`
	Save        bool   `yaml:"save"`
	Load        bool   `yaml:"load"`
	Concurrency int    `yaml:"concurrency"`
}

// Default returns the built-in defaults used when no config file exists.
func Default() Config {
	return Config{Concurrency: 4}
}

// Load reads and parses path. A missing file is not an error: it returns
// Default() unchanged, since --config defaults to a path that need not
// exist.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}
