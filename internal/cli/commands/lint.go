package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/lint"
	"github.com/ccollicutt/mtr/pkg/output"
)

// LintOptions holds command-line options for the lint command.
type LintOptions struct {
	Output  string
	Disable []string
	NoColor bool
}

// NewLintCommand creates the lint command.
func NewLintCommand(g *Globals) *cobra.Command {
	opts := &LintOptions{}

	cmd := &cobra.Command{
		Use:   "lint [script]...",
		Short: "Check scripts for structural problems",
		Long: `Check scripts for problems the parser tolerates silently, such as data
outside tracks, missing end markers, blank lines, and bad time deltas.

Scripts default to the sources listed in the configuration file.

Exit codes:
  0 - No errors found (warnings allowed)
  1 - Errors found
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, g, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Check code to skip (can be repeated)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	return cmd
}

func runLint(cmd *cobra.Command, g *Globals, args []string, opts *LintOptions) error {
	cfg, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	paths, err := scriptPaths(args, cfg.Sources)
	if err != nil {
		return err
	}

	linter, err := newLinter(cfg, opts.Disable)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	results := make([]*lint.Result, 0, len(paths))
	for _, path := range paths {
		res, err := linter.LintFile(ctx, path)
		if err != nil {
			return err
		}
		logger.Debug("linted script", "source", path, "findings", len(res.Findings))
		results = append(results, res)
		if res.HasErrors() {
			ExitCode = 1
		}
	}

	w := cmd.OutOrStdout()
	switch opts.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "text":
		report := &output.Report{Metadata: output.Metadata{Sources: paths}}
		report.AddLint(results...)
		return output.NewTextFormatter(output.FormatOptions{
			NoColor: opts.NoColor || !colorEnabled(w),
		}).FormatLint(report, w)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

// newLinter builds a linter that matches the configured parser settings.
func newLinter(cfg *config.Config, disable []string) (*lint.Linter, error) {
	known := make(map[lint.Code]bool)
	for _, c := range lint.DefaultChecks() {
		known[c.Code] = true
	}

	codes := make([]lint.Code, 0, len(disable))
	for _, d := range disable {
		code := lint.Code(d)
		if !known[code] {
			return nil, fmt.Errorf("unknown check %q", d)
		}
		codes = append(codes, code)
	}

	return lint.New(
		lint.WithMaxArgs(cfg.Parser.MaxArgs),
		lint.WithMarkers(cfg.Parser.TrackMarker, cfg.Parser.EndMarker),
		lint.WithDisabled(codes...),
	), nil
}
