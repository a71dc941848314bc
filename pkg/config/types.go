// Package config provides configuration loading and validation for mtr.
package config

import (
	"log/slog"
	"time"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	Sources  []string        `yaml:"sources,omitempty" toml:"sources"`
	Parser   ParserConfig    `yaml:"parser" toml:"parser"`
	Log      LogConfig       `yaml:"log" toml:"log"`
	Rules    []RuleConfig    `yaml:"rules,omitempty" toml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" toml:"webhooks"`
}

// ParserConfig controls how scripts are read.
type ParserConfig struct {
	// MaxArgs is the maximum number of arguments on one line.
	MaxArgs int `yaml:"max_args" toml:"max_args"`

	// MaxTracks caps the number of tracks in a script. Zero means unlimited.
	MaxTracks int `yaml:"max_tracks" toml:"max_tracks"`

	// TrackMarker is the prefix of a track start line.
	TrackMarker string `yaml:"track_marker" toml:"track_marker"`

	// EndMarker is the prefix of a track end line.
	EndMarker string `yaml:"end_marker" toml:"end_marker"`
}

// Options converts the section into parser options.
func (p ParserConfig) Options() []parser.Option {
	return []parser.Option{
		parser.WithMaxArgs(p.MaxArgs),
		parser.WithMaxTracks(p.MaxTracks),
		parser.WithMarkers(p.TrackMarker, p.EndMarker),
	}
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`

	// Format is text or json.
	Format string `yaml:"format" toml:"format"`
}

// SlogLevel returns the configured level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Log levels and formats.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// RuleType represents the type of track rule.
type RuleType string

const (
	RuleTypeMaxGap      RuleType = "max_gap"
	RuleTypeMaxDuration RuleType = "max_duration"
	RuleTypeMinLines    RuleType = "min_lines"
)

// RuleConfig defines a single track rule.
type RuleConfig struct {
	Name        string `yaml:"name" toml:"name"`
	Type        string `yaml:"type" toml:"type"` // max_gap, max_duration, min_lines
	Description string `yaml:"description,omitempty" toml:"description"`

	// Tracks limits the rule to these track indexes. Empty means all tracks.
	Tracks []int `yaml:"tracks,omitempty" toml:"tracks"`

	// max_gap: largest allowed delta between consecutive lines.
	MaxGapMs int64 `yaml:"max_gap_ms,omitempty" toml:"max_gap_ms"`

	// max_duration: largest allowed accumulated track time.
	MaxDurationMs int64 `yaml:"max_duration_ms,omitempty" toml:"max_duration_ms"`

	// min_lines: fewest data lines a track may have.
	MinLines int `yaml:"min_lines,omitempty" toml:"min_lines"`
}

// RuleTypeEnum returns the rule type as a RuleType enum.
func (r *RuleConfig) RuleTypeEnum() RuleType {
	return RuleType(r.Type)
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when issues are detected (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that receives reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty" toml:"name"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url" toml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty" toml:"token"`

	// Trigger defaults to "on_issues".
	Trigger WebhookTrigger `yaml:"trigger,omitempty" toml:"trigger"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout"`

	// Retries is the number of extra attempts after a 5xx or network error.
	Retries int `yaml:"retries,omitempty" toml:"retries"`
}
