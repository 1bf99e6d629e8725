package main

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration. Values come from defaults, then the
// config file, then flags.
type Config struct {
	Layouts      string `yaml:"layouts"`
	Models       string `yaml:"models"`
	TypeID       string `yaml:"type"`
	Data         string `yaml:"data"`
	Attachments  string `yaml:"attachments"`
	Resources    string `yaml:"resources"`
	Locale       string `yaml:"locale"`
	Page         string `yaml:"page"`
	Output       string `yaml:"output"`
	KeepRequired bool   `yaml:"keepRequired"`
}

func defaultConfig() Config {
	return Config{
		Layouts: "layouts",
		Models:  "models",
		Locale:  "en",
		Output:  "text",
	}
}

// loadConfig reads path (when set) and fills every field it leaves empty
// from the defaults.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := mergo.Merge(&cfg, defaultConfig()); err != nil {
		return Config{}, fmt.Errorf("config: apply defaults: %w", err)
	}
	return cfg, nil
}

// override copies every non-zero flag value over cfg.
func override(cfg Config, flags Config) (Config, error) {
	if err := mergo.Merge(&cfg, flags, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("config: apply flags: %w", err)
	}
	return cfg, nil
}
