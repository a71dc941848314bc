package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DetectFormat picks the syntax from the file extension. Anything that is
// not .toml is read as YAML.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(data, DetectFormat(path), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadOrDefault loads path, or builds the default configuration (with
// environment overrides) when path is empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}
	return finish(DefaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func decode(data []byte, format Format, cfg *Config) error {
	switch format {
	case FormatTOML:
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// Validate checks a configuration for errors and fills in defaults for
// unset optional fields.
func Validate(cfg *Config) error {
	if err := validateParser(&cfg.Parser); err != nil {
		return fmt.Errorf("parser: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	names := make(map[string]bool)
	for i := range cfg.Rules {
		if err := validateRule(&cfg.Rules[i]); err != nil {
			return fmt.Errorf("rules[%d] (%s): %w", i, cfg.Rules[i].Name, err)
		}
		if names[cfg.Rules[i].Name] {
			return fmt.Errorf("rules[%d]: duplicate name %q", i, cfg.Rules[i].Name)
		}
		names[cfg.Rules[i].Name] = true
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateParser(p *ParserConfig) error {
	if p.MaxArgs == 0 {
		p.MaxArgs = DefaultMaxArgs
	}
	if p.MaxArgs < 0 {
		return fmt.Errorf("max_args must be positive, got %d", p.MaxArgs)
	}
	if p.MaxTracks < 0 {
		return fmt.Errorf("max_tracks must not be negative, got %d", p.MaxTracks)
	}

	if p.TrackMarker == "" {
		p.TrackMarker = DefaultTrackMarker
	}
	if p.EndMarker == "" {
		p.EndMarker = DefaultEndMarker
	}
	if strings.HasPrefix(p.EndMarker, p.TrackMarker) || strings.HasPrefix(p.TrackMarker, p.EndMarker) {
		return fmt.Errorf("track_marker %q and end_marker %q overlap", p.TrackMarker, p.EndMarker)
	}

	return nil
}

func validateLog(l *LogConfig) error {
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	switch l.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", l.Level)
	}

	if l.Format == "" {
		l.Format = DefaultLogFormat
	}
	switch l.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid format %q (must be text or json)", l.Format)
	}

	return nil
}

func validateRule(rule *RuleConfig) error {
	if rule.Name == "" {
		return errors.New("name is required")
	}

	for _, track := range rule.Tracks {
		if track < 0 {
			return fmt.Errorf("tracks: invalid index %d", track)
		}
	}

	switch rule.RuleTypeEnum() {
	case RuleTypeMaxGap:
		if rule.MaxGapMs <= 0 {
			return errors.New("max_gap_ms must be > 0 for max_gap rules")
		}
	case RuleTypeMaxDuration:
		if rule.MaxDurationMs <= 0 {
			return errors.New("max_duration_ms must be > 0 for max_duration rules")
		}
	case RuleTypeMinLines:
		if rule.MinLines <= 0 {
			return errors.New("min_lines must be > 0 for min_lines rules")
		}
	default:
		return fmt.Errorf("invalid type %q (must be max_gap, max_duration, or min_lines)", rule.Type)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnIssues
	case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	if wh.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", wh.Retries)
	}

	return nil
}

// expandEnvVar expands a token given as ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}
	return s
}
