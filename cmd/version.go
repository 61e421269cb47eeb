package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/multitenancy/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version, commit, build time, Go version and platform.

Examples:
  multitenancy version              # multi-line text
  multitenancy version --short      # version (commit)
  multitenancy version --format json`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	AddFlagValidation(versionCmd, "format", func(format string) error {
		return validateFormat(format, versionFormats)
	})
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	switch strings.ToLower(versionFormat) {
	case "json":
		return outputJSON(out, info)
	case "yaml":
		return outputYAML(out, info)
	}

	if versionShort {
		_, err := fmt.Fprintln(out, info.Short())
		return err
	}
	_, err := fmt.Fprintln(out, info.String())
	return err
}
