package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config defines runtime settings for routeflow.
type Config struct {
	RoutesPath       string       `yaml:"routesPath"`
	StepsPath        string       `yaml:"stepsPath"`
	RunsPath         string       `yaml:"runsPath"`
	DistPath         string       `yaml:"distPath"`
	LogLevel         string       `yaml:"logLevel"`
	SimLatencyFactor *float64     `yaml:"simLatencyFactor,omitempty"`
	Exec             ExecConfig   `yaml:"exec"`
	Server           ServerConfig `yaml:"server"`
}

type ExecConfig struct {
	Timeout   string   `yaml:"timeout"`
	MaxOutput int      `yaml:"maxOutput"`
	Blocklist []string `yaml:"blocklist"`
}

type ServerConfig struct {
	Address           string `yaml:"address"`
	RequestsPerMinute int    `yaml:"requestsPerMinute"`
}

// LoadConfig loads configuration from a YAML file and environment overrides.
// An empty path falls back to the default location when that file exists.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		RoutesPath: "./routes",
		StepsPath:  "./steps",
		RunsPath:   "./runs",
		DistPath:   "./dist",
		LogLevel:   "info",
		Exec: ExecConfig{
			Timeout:   "30s",
			MaxOutput: 65536,
		},
		Server: ServerConfig{
			Address:           "127.0.0.1:8484",
			RequestsPerMinute: 120,
		},
	}

	if path == "" {
		if def := DefaultConfigPath(); fileExists(def) {
			path = def
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ROUTEFLOW_ROUTES_PATH"); v != "" {
		cfg.RoutesPath = v
	}
	if v := os.Getenv("ROUTEFLOW_STEPS_PATH"); v != "" {
		cfg.StepsPath = v
	}
	if v := os.Getenv("ROUTEFLOW_RUNS_PATH"); v != "" {
		cfg.RunsPath = v
	}
	if v := os.Getenv("ROUTEFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ROUTEFLOW_SERVER_ADDR"); v != "" {
		cfg.Server.Address = v
	}
}

// LatencyFactor returns the configured simulation latency scale, defaulting
// to 1 (historical behavior).
func (c *Config) LatencyFactor() float64 {
	if c.SimLatencyFactor == nil {
		return 1
	}
	return *c.SimLatencyFactor
}

// DefaultConfigPath returns the default location for the CLI config file.
func DefaultConfigPath() string {
	if path := os.Getenv("ROUTEFLOW_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".routeflow", "config.yaml")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
