package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openloom/loom/pkg/container"
	"github.com/openloom/loom/pkg/facts"
	"github.com/openloom/loom/pkg/manifest"
)

var (
	// Global flags
	factsPath  string
	profiles   []string
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Loom - Conditional Dependency Injection Container",
		Long: `Loom wires declared components into live object graphs.

Components declare conditions (capabilities, properties, profiles,
presence of other components) that decide whether they exist in a given
environment. The loom CLI inspects component manifests without running
any application code:

  - Validate manifest syntax and structure
  - Resolve which components exist against a set of facts
  - Export the dependency graph as DOT or JSON`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&factsPath, "facts", "f", "", "facts file path (YAML)")
	rootCmd.PersistentFlags().StringSliceVarP(&profiles, "profile", "p", nil, "active profiles")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newGraphCommand())

	return rootCmd
}

// buildFacts assembles the fact source from the global flags: the facts
// file when given, environment variables beneath it.
func buildFacts() (facts.Source, error) {
	layers := make([]facts.Source, 0, 2)
	if factsPath != "" {
		fs, err := facts.NewFileSource(factsPath)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fs)
	}
	layers = append(layers, &facts.EnvSource{})

	layered := facts.NewLayered(layers...)
	if len(profiles) > 0 {
		return layered.WithProfiles(profiles...), nil
	}
	return layered, nil
}

// loadContainer parses a manifest and starts a declaration-only
// container over it, ready for existence and graph inspection.
func loadContainer(ctx context.Context, path string) (*container.Container, error) {
	parser := manifest.NewParser()
	m, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	descriptors, err := m.Descriptors()
	if err != nil {
		return nil, err
	}

	src, err := buildFacts()
	if err != nil {
		return nil, err
	}

	c := container.New(container.Config{Facts: src})
	for _, d := range descriptors {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
