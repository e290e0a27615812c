package config

// Default values for configuration.
const (
	DefaultTimezone = "America/Chicago"
	DefaultLedger   = "vdjhist.db"
)

// Environment variable names.
const (
	EnvTimezone = "VDJHIST_TIMEZONE"
	EnvLedger   = "VDJHIST_LEDGER"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HistorySources: []string{},
		Timezone:       DefaultTimezone,
		Ledger:         DefaultLedger,
	}
}
