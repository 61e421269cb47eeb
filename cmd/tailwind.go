package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/multitenancy/internal/integrations"
)

var tailwindCmd = &cobra.Command{
	Use:   "tailwind",
	Short: "Show per-theme stylesheet builds",
	Long: `Report the Tailwind builds each theme needs. Nothing is executed: the
commands are printed so a process manager or build script can run them.

Requires tailwind.enabled in the configuration.`,
}

var tailwindTargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List stylesheet compilation targets",
	Args:  cobra.NoArgs,
	RunE:  runTailwindTargets,
}

var tailwindCommandCmd = &cobra.Command{
	Use:   "command <theme>",
	Short: "Print the build command for a theme",
	Long: `Print the argv that compiles a theme's stylesheet.

Examples:
  multitenancy tailwind command acme           # minified build
  multitenancy tailwind command acme --debug   # unminified
  multitenancy tailwind command acme --watch   # rebuild on change`,
	Args: cobra.ExactArgs(1),
	RunE: runTailwindCommand,
}

var (
	tailwindFormat string
	tailwindDebug  bool
	tailwindWatch  bool
)

func init() {
	rootCmd.AddCommand(tailwindCmd)
	tailwindCmd.AddCommand(tailwindTargetsCmd, tailwindCommandCmd)

	addOutputFlag(tailwindTargetsCmd, &tailwindFormat, listFormats)
	tailwindCommandCmd.Flags().BoolVar(&tailwindDebug, "debug", false, "Skip minification")
	tailwindCommandCmd.Flags().BoolVar(&tailwindWatch, "watch", false, "Add --watch")
}

func runTailwindTargets(cmd *cobra.Command, args []string) error {
	env, err := bootEnvironment(cmd)
	if err != nil {
		return err
	}
	targets := integrations.CompilationTargets(env.app, env.registry.Themes())
	if targets == nil {
		targets = []integrations.Target{}
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(tailwindFormat) {
	case "json":
		return outputJSON(out, targets)
	case "yaml":
		return outputYAML(out, targets)
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "No stylesheet targets.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THEME\tINPUT\tOUTPUT")
	for _, t := range targets {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Theme, t.Input, t.Output)
	}
	return w.Flush()
}

func runTailwindCommand(cmd *cobra.Command, args []string) error {
	env, err := bootEnvironment(cmd)
	if err != nil {
		return err
	}
	if env.app.Tailwind == nil {
		return fmt.Errorf("tailwind is disabled (set tailwind.enabled)")
	}
	if _, err := env.registry.Find(args[0]); err != nil {
		return err
	}

	for _, target := range integrations.CompilationTargets(env.app, env.registry.Themes()) {
		if target.Theme != args[0] {
			continue
		}
		argv := integrations.CompileCommand(target, env.app.Tailwind.Executable, tailwindDebug)
		if tailwindWatch {
			argv = integrations.WatchCommand(target, env.app.Tailwind.Executable, tailwindDebug)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(argv, " "))
		return err
	}
	return fmt.Errorf("theme %s has no app/assets/tailwind/%s/application.css", args[0], args[0])
}
