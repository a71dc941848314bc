package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate an mtr configuration file without running analysis.
The file may be given as an argument or with --config.

Checks:
  - YAML or TOML syntax
  - Parser limits and markers
  - Rule type-specific requirements
  - Webhook URLs and triggers
  - Script source existence and track markers (warning only)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				g.ConfigPath = args[0]
			}
			if g.ConfigPath == "" {
				return fmt.Errorf("no configuration file given")
			}
			return runValidate(cmd, g)
		},
	}
}

func runValidate(cmd *cobra.Command, g *Globals) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n", g.ConfigPath)

	cfg, _, err := g.setup(cmd)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Sources:  %d pattern(s)\n", len(cfg.Sources))
	fmt.Fprintf(w, "  Max args: %d\n", cfg.Parser.MaxArgs)
	fmt.Fprintf(w, "  Markers:  %q / %q\n", cfg.Parser.TrackMarker, cfg.Parser.EndMarker)
	fmt.Fprintf(w, "  Rules:    %d\n", len(cfg.Rules))
	fmt.Fprintf(w, "  Webhooks: %d\n", len(cfg.Webhooks))

	if len(cfg.Rules) > 0 {
		fmt.Fprintf(w, "\nRules:\n")
		for i, rule := range cfg.Rules {
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, rule.Type, rule.Name)
			if rule.Description != "" {
				fmt.Fprintf(w, "     %s\n", rule.Description)
			}
		}
	}

	if len(cfg.Sources) == 0 {
		return nil
	}

	files, err := parser.ExpandGlobs(cfg.Sources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding source patterns: %v\n", err)
		return nil
	}

	fmt.Fprintf(w, "\nScripts:\n")
	for _, path := range files {
		fmt.Fprintf(w, "  - %s: %s\n", path, describeScript(g, path))
	}

	return nil
}

// describeScript reports how many tracks a script has, or why it can't be read.
func describeScript(g *Globals, path string) string {
	if _, err := os.Stat(path); err != nil {
		return "Warning: not found"
	}
	f, err := parser.OpenFile(path)
	if err != nil {
		return "Warning: " + err.Error()
	}
	defer f.Close()

	tracks, err := parser.IndexTracks(f, g.parserOptions()...)
	if err != nil {
		return "Warning: " + err.Error()
	}
	return fmt.Sprintf("%d track(s)", len(tracks))
}
