package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/multitenancy/internal/theme"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List discovered themes",
	Long: `List every theme under the themes root with its mount path, relative
path, namespace and the resource directories it provides.

Examples:
  multitenancy list             # Table output
  multitenancy list -o json     # JSON
  multitenancy list -o yaml     # YAML`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)
	addOutputFlag(listCmd, &listFormat, listFormats)
}

type themeRow struct {
	Name         string              `json:"name" yaml:"name"`
	MountPath    string              `json:"mount_path" yaml:"mount_path"`
	RelativePath string              `json:"relative_path" yaml:"relative_path"`
	Namespace    string              `json:"namespace" yaml:"namespace"`
	Paths        map[string][]string `json:"paths" yaml:"paths"`
}

func newThemeRow(t *theme.Theme) themeRow {
	row := themeRow{
		Name:         t.Name(),
		MountPath:    t.MountPath(),
		RelativePath: t.RelativePath(),
		Paths:        make(map[string][]string),
	}
	if ns := t.Namespace(); ns != nil {
		row.Namespace = ns.Path()
	}
	if engine := t.Engine(); engine != nil {
		for kind, paths := range engine.PathTable() {
			row.Paths[string(kind)] = paths
		}
	}
	return row
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := bootEnvironment(cmd)
	if err != nil {
		return err
	}

	themes := env.registry.Themes().All()
	rows := make([]themeRow, len(themes))
	for i, t := range themes {
		rows[i] = newThemeRow(t)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(listFormat) {
	case "json":
		return outputJSON(out, rows)
	case "yaml":
		return outputYAML(out, rows)
	default:
		if len(rows) == 0 {
			fmt.Fprintln(out, "No themes found.")
			return nil
		}
		return outputThemeTable(out, rows)
	}
}

func outputThemeTable(out io.Writer, rows []themeRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMOUNT\tPATH\tNAMESPACE\tRESOURCES")
	fmt.Fprintln(w, "----\t-----\t----\t---------\t---------")
	for _, r := range rows {
		kinds := make([]string, 0, len(r.Paths))
		for kind := range r.Paths {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.MountPath, r.RelativePath, r.Namespace, strings.Join(kinds, ","))
	}
	return w.Flush()
}

func outputJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputYAML(out io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(out)
	defer encoder.Close()
	return encoder.Encode(v)
}
