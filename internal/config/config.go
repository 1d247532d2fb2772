// Package config provides configuration management for featurematch tools.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FetchConfig holds configuration for the wikidata translation fetcher.
type FetchConfig struct {
	Endpoint    string
	UserAgent   string
	HTTPTimeout time.Duration
	BatchSize   int
	Threads     int
	StoreURL    string
}

// DefaultFetchConfig returns configuration with default values.
func DefaultFetchConfig() *FetchConfig {
	return &FetchConfig{
		Endpoint:    "https://query.wikidata.org/bigdata/namespace/wdq/sparql",
		UserAgent:   "featurematch/1.0 (https://github.com/flowmaps/featurematch)",
		HTTPTimeout: 30 * time.Second,
		BatchSize:   5000,
		Threads:     runtime.NumCPU(),
		StoreURL:    "wikidata_names.json",
	}
}

// LoadFetchConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadFetchConfig(configPath string) (*FetchConfig, error) {
	v := viper.New()

	defaults := DefaultFetchConfig()
	v.SetDefault("fetch.endpoint", defaults.Endpoint)
	v.SetDefault("fetch.user_agent", defaults.UserAgent)
	v.SetDefault("fetch.http_timeout", defaults.HTTPTimeout.String())
	v.SetDefault("fetch.batch_size", defaults.BatchSize)
	v.SetDefault("fetch.threads", defaults.Threads)
	v.SetDefault("fetch.store_url", defaults.StoreURL)

	// Bind environment variables with FM_ prefix
	v.SetEnvPrefix("FM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &FetchConfig{
		Endpoint:    v.GetString("fetch.endpoint"),
		UserAgent:   v.GetString("fetch.user_agent"),
		HTTPTimeout: v.GetDuration("fetch.http_timeout"),
		BatchSize:   v.GetInt("fetch.batch_size"),
		Threads:     v.GetInt("fetch.threads"),
		StoreURL:    v.GetString("fetch.store_url"),
	}

	if err := validateFetchConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateFetchConfig checks endpoint presence and positive values for
// timeout, batch size and threads.
func validateFetchConfig(cfg *FetchConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %v", cfg.HTTPTimeout)
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.BatchSize > 50000 {
		return fmt.Errorf("batch_size must be at most 50000, got %d", cfg.BatchSize)
	}
	if cfg.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d", cfg.Threads)
	}
	if cfg.StoreURL == "" {
		return fmt.Errorf("store_url must not be empty")
	}
	return nil
}
