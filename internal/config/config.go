// Package config loads the crawler's YAML configuration file, per
// spec.md §6. Unmarshaling follows the yaml.v3 usage seen in
// deepnoodle-ai-wonton's cli/config.go; this module's configuration
// surface is small enough that a single tagged struct replaces that
// repo's generic reflect-driven binder.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Crawler holds the crawler.* keys from the configuration file.
type Crawler struct {
	MaxQueueSize   int    `yaml:"max_queue_size"`
	MaxConnections int    `yaml:"max_connections"`
	TimeoutSeconds int    `yaml:"timeout"`
	MaxThreads     int    `yaml:"max_threads"`
	MaxPages       int    `yaml:"max_pages"`
	DelayMs        int    `yaml:"delay_ms"`
	UserAgent      string `yaml:"user_agent"`
}

// Config is the top-level configuration document.
type Config struct {
	Crawler Crawler `yaml:"crawler"`
}

const (
	defaultMaxQueueSize   = 10000
	defaultMaxConnections = 10
	defaultTimeoutSeconds = 10
	defaultMaxThreads     = 8
	defaultMaxPages       = 1000
	defaultDelayMs        = 500
	defaultUserAgent      = "searchcrawl/1.0 (+https://github.com/codepr/searchcrawl)"
)

// Load reads and parses the YAML configuration file at path, applying
// defaults for any key left unset. A missing file or malformed document
// is a fatal configuration error per spec.md §7.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Crawler.MaxQueueSize == 0 {
		cfg.Crawler.MaxQueueSize = defaultMaxQueueSize
	}
	if cfg.Crawler.MaxConnections == 0 {
		cfg.Crawler.MaxConnections = defaultMaxConnections
	}
	if cfg.Crawler.TimeoutSeconds == 0 {
		cfg.Crawler.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Crawler.MaxThreads == 0 {
		cfg.Crawler.MaxThreads = defaultMaxThreads
	}
	if cfg.Crawler.MaxPages == 0 {
		cfg.Crawler.MaxPages = defaultMaxPages
	}
	if cfg.Crawler.DelayMs == 0 {
		cfg.Crawler.DelayMs = defaultDelayMs
	}
	if cfg.Crawler.UserAgent == "" {
		cfg.Crawler.UserAgent = defaultUserAgent
	}
}

// Timeout returns the configured per-request timeout as a Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}
