package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <manifest>",
		Short: "Resolve component existence against facts",
		Long: `Resolve which declared components exist for a given environment.

Conditions are evaluated against the supplied facts (capabilities,
properties, profiles) to a fixed point. The result partitions the
declared components into present and absent. Unresolvable mutual
bean-presence conditions are reported as an error.`,
		Example: `  # Resolve with a facts file
  loom resolve --facts ./facts.yaml ./components.yaml

  # Resolve with explicit profiles
  loom resolve --profile production --profile eu ./components.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			log.Info().
				Str("path", path).
				Strs("profiles", profiles).
				Msg("Resolving component existence")

			c, err := loadContainer(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer c.Close(context.Background())

			existence := c.Existence()
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(existence)
			}

			fmt.Printf("Present (%d): %s\n", len(existence.Present), formatList(existence.Present))
			fmt.Printf("Absent  (%d): %s\n", len(existence.Absent), formatList(existence.Absent))
			return nil
		},
	}

	return cmd
}
