package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// NewSeekCommand creates the seek command.
func NewSeekCommand(g *Globals) *cobra.Command {
	var track int
	var timeMs int64

	cmd := &cobra.Command{
		Use:   "seek <script>",
		Short: "Show the first line at or after a time",
		Long: `Seek to a time within a track and show the line held there, with each
argument read as a string, an integer, and a float.

Exits with code 1 when the track ends before the requested time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := g.setup(cmd); err != nil {
				return err
			}

			f, err := parser.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			p := parser.New(g.parserOptions()...)
			if err := p.Attach(f, track); err != nil && !errors.Is(err, parser.ErrSeekTimeUnreachable) {
				return err
			}
			if err := p.Seek(track, timeMs); err != nil {
				if !errors.Is(err, parser.ErrSeekTimeUnreachable) || p.Err() != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "track %d ends before %dms\n", track, timeMs)
				ExitCode = 1
				return nil
			}

			return printHeld(cmd, p)
		},
	}

	cmd.Flags().IntVarP(&track, "track", "t", 0, "Track index")
	cmd.Flags().Int64Var(&timeMs, "time", 0, "Target time in ms")

	return cmd
}

func printHeld(cmd *cobra.Command, p *parser.Parser) error {
	w := cmd.OutOrStdout()
	ms, _ := p.NextTimeMs()
	fmt.Fprintf(w, "track %d at %dms, %d argument(s)\n", p.Track(), ms, p.NumArgs())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ARG\tSTRING\tINT\tFLOAT")
	for i := 0; i < p.NumArgs(); i++ {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%g\n", i, p.ArgString(i), p.ArgInt(i), p.ArgFloat64(i))
	}
	return tw.Flush()
}
