package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/multitenancy/internal/integrations"
)

var specPathsCmd = &cobra.Command{
	Use:   "spec-paths [paths...]",
	Short: "Expand test paths to include theme specs",
	Long: `Print the test paths the host test runner would run.

Without arguments the configured specs.files_to_run is used; when it is just
the default spec directory, every theme's spec directory is appended. A theme
path such as themes/acme expands to its spec directory and those of themes
nested under its name.`,
	RunE: runSpecPaths,
}

func init() {
	rootCmd.AddCommand(specPathsCmd)
}

func runSpecPaths(cmd *cobra.Command, args []string) error {
	env, err := bootEnvironment(cmd)
	if err != nil {
		return err
	}

	var paths []string
	switch {
	case len(args) > 0:
		paths = integrations.RewriteSpecPaths(env.registry.Themes(), args, env.cfg.Specs.DefaultPath)
	case env.app.TestRunner != nil:
		paths = env.app.TestRunner.FilesToRun
	default:
		return fmt.Errorf("spec paths are disabled (specs.enabled is false)")
	}

	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
