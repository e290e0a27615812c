package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and loads the time zone.
func Validate(cfg *Config) error {
	if len(cfg.HistorySources) == 0 {
		return errors.New("history_sources: at least one history source is required")
	}
	for i, src := range cfg.HistorySources {
		if src == "" {
			return fmt.Errorf("history_sources[%d]: source must not be empty", i)
		}
	}

	if cfg.Timezone == "" {
		return errors.New("timezone is required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: invalid zone %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	if cfg.Ledger == "" {
		return errors.New("ledger: database path is required")
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
	if ledger := os.Getenv(EnvLedger); ledger != "" {
		c.Ledger = ledger
	}
}
