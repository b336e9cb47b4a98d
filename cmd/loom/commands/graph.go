package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newGraphCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph <manifest>",
		Short: "Export the dependency graph",
		Long: `Build and export the dependency graph over the existing components.

Existence is resolved first; conditioned-away components do not appear.
The graph includes injection edges, explicit ordering constraints, and
the deterministic initialization order. Required dependency cycles are
reported as an error.`,
		Example: `  # DOT output for Graphviz
  loom graph --format dot ./components.yaml | dot -Tsvg -o graph.svg

  # JSON output to a file
  loom graph --format json -o graph.json ./components.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			log.Info().
				Str("path", path).
				Str("format", format).
				Msg("Exporting dependency graph")

			c, err := loadContainer(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer c.Close(context.Background())

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			graph := c.Graph()
			switch format {
			case "dot":
				return graph.WriteDOT(out)
			case "json":
				return graph.WriteJSON(out)
			default:
				return fmt.Errorf("unknown format %q (want dot or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "dot", "output format (dot, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
