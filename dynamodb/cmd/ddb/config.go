package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const configFilename = "ddb.yaml"

// Config holds defaults for every command.
// Loaded from ddb.yaml if present.
type Config struct {
	// Schema is the schema file used when -schema is not given.
	Schema string `yaml:"schema"`

	// LogLevel is the zerolog level of request logs, "warn" if empty.
	LogLevel string `yaml:"logLevel"`
}

// LoadConfig searches for ddb.yaml starting from the current directory
// and walking up to the filesystem root. Returns empty config if not found.
// A relative schema path is resolved against the config file's directory.
func LoadConfig() (Config, error) {
	var cfg Config

	configPath := findConfigFile()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	if cfg.Schema != "" && !filepath.IsAbs(cfg.Schema) {
		cfg.Schema = filepath.Join(filepath.Dir(configPath), cfg.Schema)
	}
	return cfg, nil
}

func (c Config) level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(c.LogLevel)
}

// findConfigFile searches for ddb.yaml walking up from current directory.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, configFilename)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
