package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig represents the optional application configuration file
type AppConfig struct {
	Source SourceConfig `toml:"source"`
	Search SearchConfig `toml:"search"`
}

// SourceConfig tunes the article source
type SourceConfig struct {
	Sections     string `toml:"sections"`
	Query        string `toml:"query"`
	LookbackDays int    `toml:"lookback_days"`
	PageSize     int    `toml:"page_size"`
	MaxPages     int    `toml:"max_pages"`
}

// SearchConfig tunes search ranking
type SearchConfig struct {
	// Threshold is nil when the file does not set it. Zero is a valid threshold.
	Threshold *float64 `toml:"threshold"`
	Limit     int      `toml:"limit"`
}

// Lookback returns the lookback window, zero when unset
func (s SourceConfig) Lookback() time.Duration {
	return time.Duration(s.LookbackDays) * 24 * time.Hour
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Source.LookbackDays < 0 {
		return goerr.Wrap(ErrInvalidConfig, "lookback_days must not be negative", goerr.V("value", a.Source.LookbackDays))
	}
	if a.Source.PageSize < 0 || a.Source.PageSize > 200 {
		return goerr.Wrap(ErrInvalidConfig, "page_size must be between 1 and 200", goerr.V("value", a.Source.PageSize))
	}
	if a.Source.MaxPages < 0 {
		return goerr.Wrap(ErrInvalidConfig, "max_pages must not be negative", goerr.V("value", a.Source.MaxPages))
	}
	if th := a.Search.Threshold; th != nil && (*th < 0 || *th > 1) {
		return goerr.Wrap(ErrInvalidConfig, "threshold must be between 0 and 1", goerr.V("value", *th))
	}
	if a.Search.Limit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "limit must not be negative", goerr.V("value", a.Search.Limit))
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file.
// An empty path yields the zero configuration, meaning built-in defaults.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	if path == "" {
		return &AppConfig{}, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}
