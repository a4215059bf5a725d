package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvDatabase designates the active persistence location for populate.
// When unset (and no config file provides one), populate runs without
// persisting.
const EnvDatabase = "PENALTYCACHE_DB"

// Config is the optional YAML sidecar for the populate command.
type Config struct {
	// DB is the persistence location. The environment variable wins
	// over this value.
	DB string `yaml:"db"`

	// Workers is the default concurrency. The --workers flag wins over
	// this value.
	Workers int `yaml:"workers"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers < 0 {
		return Config{}, fmt.Errorf("parse config %s: workers must be >= 0", path)
	}
	return cfg, nil
}

// resolveDatabase picks the persistence location: environment first,
// then the config file. Empty means "run without persisting".
func resolveDatabase(cfg Config) string {
	if db := os.Getenv(EnvDatabase); db != "" {
		return db
	}
	return cfg.DB
}
