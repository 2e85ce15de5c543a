package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration, read from an optional
// YAML file and overridable per-field by environment variables.
type Config struct {
	BotToken     string        `yaml:"bot_token"`
	Admins       []int64       `yaml:"admins"`
	DBPath       string        `yaml:"db_path"`
	Port         string        `yaml:"port"`
	UserAgent    string        `yaml:"user_agent"`
	PollInterval time.Duration `yaml:"poll_interval"`
	KeepPerLink  int           `yaml:"keep_per_link"`
	LogLevel     string        `yaml:"log_level"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "db/fripe.db"
	}
	if c.Port == "" {
		c.Port = "8086"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Second
	}
	if c.KeepPerLink <= 0 {
		c.KeepPerLink = 100
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
