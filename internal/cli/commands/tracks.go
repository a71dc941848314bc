package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// scriptTracks is the track index of one script.
type scriptTracks struct {
	Source string         `json:"source"`
	Tracks []parser.Track `json:"tracks"`
}

// NewTracksCommand creates the tracks command.
func NewTracksCommand(g *Globals) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "tracks <script>...",
		Short: "List the tracks of one or more scripts",
		Long: `List every track marker found in the given scripts with its index,
the byte offset of its first line, and the header text after the marker.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := g.setup(cmd); err != nil {
				return err
			}

			paths, err := parser.ExpandGlobs(args)
			if err != nil {
				return fmt.Errorf("expanding scripts: %w", err)
			}

			all := make([]scriptTracks, 0, len(paths))
			for _, path := range paths {
				f, err := parser.OpenFile(path)
				if err != nil {
					return err
				}
				tracks, err := parser.IndexTracks(f, g.parserOptions()...)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				all = append(all, scriptTracks{Source: path, Tracks: tracks})
			}

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			case "text":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SOURCE\tTRACK\tOFFSET\tHEADER")
				for _, st := range all {
					for _, t := range st.Tracks {
						fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", st.Source, t.Index, t.Offset, t.Header)
					}
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output format %q (use text or json)", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text|json)")

	return cmd
}
