package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	// ErrConfiguration is wrapped by the aggregated validation error listing every missing value
	ErrConfiguration = goerr.New("invalid configuration")
	ErrInvalidConfig = goerr.New("invalid configuration file")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	MissingKey    = "missing"
)
