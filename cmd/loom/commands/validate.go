package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openloom/loom/pkg/manifest"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a component manifest",
		Long: `Validate a component manifest file.

This command checks:
  - YAML syntax validity
  - Structural validity of every component declaration
  - Condition and dependency well-formedness`,
		Example: `  # Validate a manifest
  loom validate ./components.yaml

  # Machine-readable result
  loom validate --json ./components.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			log.Info().
				Str("path", path).
				Msg("Validating manifest")

			parser := manifest.NewParser()
			m, err := parser.ParseFile(path)
			if err != nil {
				return err
			}
			if _, err := m.Descriptors(); err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"valid":      true,
					"components": len(m.Components),
				})
			}
			fmt.Printf("Manifest is valid: %d component(s)\n", len(m.Components))
			return nil
		},
	}

	return cmd
}
