package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/conneroisu/multitenancy/internal/routes"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show the theme engine mount table",
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

var routesFormat string

func init() {
	rootCmd.AddCommand(routesCmd)
	addOutputFlag(routesCmd, &routesFormat, listFormats)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	env, err := bootEnvironment(cmd)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	if _, err := routes.Mount(r, env.registry.Themes(), routes.InfoHandler); err != nil {
		return err
	}
	table, err := routes.Table(r)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(routesFormat) {
	case "json":
		return outputJSON(out, table)
	case "yaml":
		return outputYAML(out, table)
	}

	if len(table) == 0 {
		fmt.Fprintln(out, "No themes mounted.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tMETHODS")
	for _, e := range table {
		fmt.Fprintf(w, "%s\t%s\n", e.Pattern, strings.Join(e.Methods, ","))
	}
	return w.Flush()
}
