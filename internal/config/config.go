// Package config loads runtime configuration from the environment, with an
// optional YAML file overlay for deployments that prefer files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" yaml:"http_addr"`

	Database struct {
		// Driver selects the store: "memory" or "postgres".
		Driver string `env:"DATABASE_DRIVER" yaml:"driver"`
		DSN    string `env:"DATABASE_URL" yaml:"dsn"`
	} `yaml:"database"`

	Registry struct {
		Endpoint string `env:"REGISTRY_ENDPOINT" yaml:"endpoint"`
		APIKey   string `env:"REGISTRY_API_KEY" yaml:"api_key"`
	} `yaml:"registry"`

	Transfer struct {
		Endpoint string `env:"TRANSFER_ENDPOINT" yaml:"endpoint"`
		APIKey   string `env:"TRANSFER_API_KEY" yaml:"api_key"`
	} `yaml:"transfer"`

	StatsInterval time.Duration `env:"STATS_INTERVAL" yaml:"stats_interval"`

	RateLimit struct {
		RequestsPerSecond int `env:"RATE_LIMIT_RPS" yaml:"requests_per_second"`
		Burst             int `env:"RATE_LIMIT_BURST" yaml:"burst"`
	} `yaml:"rate_limit"`
}

// Load reads configuration in ascending precedence: built-in defaults, then
// the YAML file named by MINT_LAYER_CONFIG, then the environment. A .env file
// is honoured for local runs. Defaults only fill fields neither the file nor
// the environment set.
func Load() (Config, error) {
	_ = godotenv.Load() // allow .env for local runs

	var cfg Config
	if path := os.Getenv("MINT_LAYER_CONFIG"); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	// The env tags carry no defaults, so decoding overrides only fields whose
	// variables are actually set and leaves file values alone.
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile parses a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = 30 * time.Second
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 25
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 50
	}
}
