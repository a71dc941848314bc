package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// DumpOptions holds command-line options for the dump command.
type DumpOptions struct {
	Track int
	From  int64
	To    int64
	JSON  bool
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(g *Globals) *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <script>",
		Short: "Print the lines of one track with absolute times",
		Long: `Play one track of a script and print each line with its absolute
time, its delta, and its arguments.

--from seeks to the first line at or after the given time; --to stops after
the last line at or before it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, g, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Track, "track", "t", 0, "Track index")
	cmd.Flags().Int64Var(&opts.From, "from", 0, "Start time in ms")
	cmd.Flags().Int64Var(&opts.To, "to", -1, "End time in ms (-1 for the whole track)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print one JSON object per line")

	return cmd
}

func runDump(cmd *cobra.Command, g *Globals, path string, opts *DumpOptions) error {
	_, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	f, err := parser.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p := parser.New(g.parserOptions()...)
	if err := p.Attach(f, opts.Track); err != nil {
		if errors.Is(err, parser.ErrSeekTimeUnreachable) && p.Err() == nil {
			logger.Info("track has no lines", "track", opts.Track)
			return nil
		}
		return err
	}
	if opts.From > 0 {
		if err := p.Seek(opts.Track, opts.From); err != nil {
			if errors.Is(err, parser.ErrSeekTimeUnreachable) && p.Err() == nil {
				logger.Info("no line at or after start time", "track", opts.Track, "from_ms", opts.From)
				return nil
			}
			return err
		}
	}

	w := cmd.OutOrStdout()
	for p.HasNextLine() {
		line, _ := p.Line()
		if line.Track != opts.Track || (opts.To >= 0 && line.TimeMs > opts.To) {
			break
		}
		line.Source = path
		if err := writeLine(w, &line, opts.JSON); err != nil {
			return err
		}
		p.Pop()
	}

	return p.Err()
}

// writeLine prints a timed line as text or as a JSON object.
func writeLine(w io.Writer, line *parser.TimedLine, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(line)
	}
	_, err := fmt.Fprintf(w, "%8d  +%-6d %s\n", line.TimeMs, line.DeltaMs, strings.Join(line.Args, " "))
	return err
}
