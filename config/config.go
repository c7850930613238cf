// Package config loads the YAML configuration for the reasonmesh binary.
// Every field has a working default; passing no file path is not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig names the MCP server towards the host.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// ReasoningConfig tunes the reasoning engine.
type ReasoningConfig struct {
	DefaultStrategy        string `yaml:"defaultStrategy"`
	MaxParallelSimulations int    `yaml:"maxParallelSimulations"`
}

// ModelConfig selects the provider backing the external strategy. API keys
// are read from the provider SDK's standard environment variables, never
// from the file.
type ModelConfig struct {
	Provider string `yaml:"provider"` // "", "anthropic" or "openai"
	Name     string `yaml:"name"`
}

// Config is the root configuration document.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Model     ModelConfig     `yaml:"model"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:    ServerConfig{Name: "reasonmesh", Version: "0.1.0"},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
		Reasoning: ReasoningConfig{DefaultStrategy: "beam_search", MaxParallelSimulations: 1},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
