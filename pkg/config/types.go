// Package config provides configuration loading and validation for vdjhist.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// HistorySources are file paths or glob patterns naming VirtualDJ
	// .m3u history exports to import.
	HistorySources []string `yaml:"history_sources"`

	// Timezone is the IANA time zone name play timestamps are assigned in.
	Timezone string `yaml:"timezone"`

	// Ledger is the path of the SQLite play ledger database.
	Ledger string `yaml:"ledger"`

	// location is the loaded time zone (populated during validation).
	location *time.Location
}

// Location returns the loaded time zone.
func (c *Config) Location() *time.Location {
	return c.location
}
