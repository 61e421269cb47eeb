package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/multitenancy/internal/importmap"
)

var importmapCmd = &cobra.Command{
	Use:   "importmap <theme>",
	Short: "Show a theme's resolved import map",
	Long: `Print the import map a theme's pages are served with: the host's shared
pins followed by the theme's own pin file, later pins overriding earlier ones.

Examples:
  multitenancy importmap acme                    # {"imports": {...}}
  multitenancy importmap acme --tags             # <script type="importmap"> tags
  multitenancy importmap acme --tags --entry app # import "app" instead of "application"`,
	Args: cobra.ExactArgs(1),
	RunE: runImportmap,
}

var (
	importmapTags  bool
	importmapEntry string
)

func init() {
	rootCmd.AddCommand(importmapCmd)
	importmapCmd.Flags().BoolVar(&importmapTags, "tags", false, "Render HTML tags instead of JSON")
	importmapCmd.Flags().StringVar(&importmapEntry, "entry", "application", "Module imported by the rendered tags")
}

func runImportmap(cmd *cobra.Command, args []string) error {
	env, err := bootEnvironment(cmd)
	if err != nil {
		return err
	}
	if _, err := env.registry.Find(args[0]); err != nil {
		return err
	}

	manager := env.pipeline.ImportMaps().Manager()
	if manager == nil {
		return fmt.Errorf("import maps are disabled (importmap.enabled is false)")
	}
	scope, ok := manager.ScopeByName(args[0])
	if !ok {
		return fmt.Errorf("theme %s has no import map", args[0])
	}

	out := cmd.OutOrStdout()
	if importmapTags {
		if err := importmap.Tags(scope.Map(), importmapEntry).Render(cmd.Context(), out); err != nil {
			return err
		}
		_, err = fmt.Fprintln(out)
		return err
	}

	data, err := scope.Map().JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
