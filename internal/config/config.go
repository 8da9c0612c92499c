// Package config loads the optional YAML run configuration. Command-line
// flags override anything set here.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the converter's command-line surface.
type Config struct {
	Input     string   `yaml:"input"`
	Output    string   `yaml:"output"`
	Footnotes string   `yaml:"footnotes"`
	Names     string   `yaml:"names"`
	Books     []string `yaml:"books"`
	Jobs      int      `yaml:"jobs"`
	LogLevel  string   `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"`
	Report    string   `yaml:"report"`
}

// Load reads and decodes a YAML config file. Unknown keys are rejected so
// typos surface instead of silently doing nothing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
