// Package config holds the run configuration for the ETL and publisher
// binaries, read from a YAML file with defaults backfilled for anything left
// unset.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultDB     = "policyhub.db"
	defaultOutDir = "site/data"
)

type Config struct {
	// DB is the sqlite database path; empty disables persistence.
	DB string `yaml:"db"`
	// OutDir is where the publisher writes its JSON tables.
	OutDir string `yaml:"out_dir"`

	Sources SourcesConfig `yaml:"sources"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourcesConfig points at the pre-downloaded workbooks, rendered one CSV per
// sheet. Downloading and rendering are the fetch collaborator's job.
type SourcesConfig struct {
	// MeasuresDir holds the macroprudential measures overview workbook
	// (SyRB and BoBM sheets).
	MeasuresDir string `yaml:"measures_dir"`
	// CCyBDir holds the countercyclical buffer workbook.
	CCyBDir string `yaml:"ccyb_dir"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DB == "" {
		c.DB = defaultDB
	}
	if c.OutDir == "" {
		c.OutDir = defaultOutDir
	}
	if c.Sources.MeasuresDir == "" {
		c.Sources.MeasuresDir = "data/measures_overview"
	}
	if c.Sources.CCyBDir == "" {
		c.Sources.CCyBDir = "data/ccyb"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
