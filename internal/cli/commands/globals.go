package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Globals holds the persistent flags shared by every command and the state
// derived from them.
type Globals struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

// AddFlags registers the persistent flags on the root command.
func (g *Globals) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Configuration file (YAML or TOML)")
	cmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Log level (debug|info|warn|error), overrides the config")
	cmd.PersistentFlags().StringVar(&g.LogFormat, "log-format", "", "Log format (text|json), overrides the config")
}

// setup loads the configuration and builds the logger once per process.
func (g *Globals) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if g.cfg != nil {
		return g.cfg, g.logger, nil
	}

	cfg, err := config.LoadOrDefault(commandContext(cmd), g.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("validating flags: %w", err)
	}

	g.cfg = cfg
	g.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	return g.cfg, g.logger, nil
}

// parserOptions returns the configured parser options with logging attached.
func (g *Globals) parserOptions() []parser.Option {
	return append(g.cfg.Parser.Options(), parser.WithLogger(g.logger))
}

func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.SlogLevel()}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// colorEnabled reports whether w is a terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
