// Package config defines service configuration and its loading hooks.
//
// Defaults come from New; Load layers an optional YAML file and environment
// variables on top.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataFile is the line-delimited file matches are saved to and loaded from.
	DataFile string `koanf:"data_file"`

	// AllowedOrigins enables CORS for browser clients. Comma separated in env.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// SaveOnChange also saves after match creation and score edits, not only
	// after lock state changes.
	SaveOnChange bool `koanf:"save_on_change"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		DataFile:     "matches.txt",
		SaveOnChange: false,
	}
}
