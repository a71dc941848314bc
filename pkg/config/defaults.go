package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// Default values for configuration.
const (
	DefaultMaxArgs        = parser.DefaultMaxArgs
	DefaultTrackMarker    = parser.DefaultTrackMarker
	DefaultEndMarker      = parser.DefaultEndMarker
	DefaultLogLevel       = LogLevelInfo
	DefaultLogFormat      = LogFormatText
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvMaxArgs  = "MTR_MAX_ARGS"
	EnvLogLevel = "MTR_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			MaxArgs:     DefaultMaxArgs,
			TrackMarker: DefaultTrackMarker,
			EndMarker:   DefaultEndMarker,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if v := os.Getenv(EnvMaxArgs); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxArgs, err)
		}
		c.Parser.MaxArgs = n
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	return nil
}
