package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// TimelineOptions holds command-line options for the timeline command.
type TimelineOptions struct {
	Tracks []int
	Until  int64
	JSON   bool
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(g *Globals) *cobra.Command {
	opts := &TimelineOptions{}

	cmd := &cobra.Command{
		Use:   "timeline [script]...",
		Short: "Play several tracks as one timeline",
		Long: `Play every selected track of every script together, merged by absolute
time. Lines at the same time keep script then track order.

Scripts default to the sources listed in the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(cmd, g, args, opts)
		},
	}

	cmd.Flags().IntSliceVar(&opts.Tracks, "track", nil, "Track index to include (can be repeated, default all)")
	cmd.Flags().Int64Var(&opts.Until, "until", -1, "Stop after this time in ms (-1 for no limit)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print one JSON object per line")

	return cmd
}

func runTimeline(cmd *cobra.Command, g *Globals, args []string, opts *TimelineOptions) error {
	cfg, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	paths, err := scriptPaths(args, cfg.Sources)
	if err != nil {
		return err
	}

	var sources []parser.LineSource
	for _, path := range paths {
		s, err := parser.OpenTrackSources(path, opts.Tracks, g.parserOptions()...)
		if err != nil {
			for _, src := range sources {
				src.Close()
			}
			return err
		}
		sources = append(sources, s...)
	}
	logger.Debug("timeline opened", "scripts", len(paths), "tracks", len(sources))

	merged := parser.NewMergedSource(sources...)
	defer merged.Close()

	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()
	for {
		line, err := merged.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if opts.Until >= 0 && line.TimeMs > opts.Until {
			return nil
		}
		if err := writeTimelineLine(w, line, opts.JSON); err != nil {
			return err
		}
	}
}

func writeTimelineLine(w io.Writer, line *parser.TimedLine, asJSON bool) error {
	if asJSON {
		return writeLine(w, line, true)
	}
	_, err := fmt.Fprintf(w, "%8d  %s#%d  %s\n", line.TimeMs, line.Source, line.Track, strings.Join(line.Args, " "))
	return err
}

// scriptPaths expands script arguments, falling back to the configured sources.
func scriptPaths(args, configured []string) ([]string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = configured
	}
	if len(patterns) == 0 {
		return nil, errors.New("no scripts given and no sources configured")
	}

	paths, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding scripts: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scripts matched patterns: %v", patterns)
	}
	return paths, nil
}
