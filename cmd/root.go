// Package cmd provides the multitenancy command-line interface.
//
// Configuration is read, highest priority first, from:
//  1. the --config flag
//  2. the MULTITENANCY_CONFIG_FILE environment variable
//  3. .multitenancy.yml in the current directory
//
// Every key can be overridden with MULTITENANCY_<SECTION>_<OPTION>, for
// example MULTITENANCY_THEMES_ROOT=skins.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/multitenancy/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "multitenancy",
	Short: "Inspect the themes of a multi-tenant application",
	Long: `multitenancy discovers the themes under an application's themes root,
bootstraps each one into its own namespace and reports what the host
application would see: mount paths, resource paths, per-theme import maps,
stylesheet build targets and test paths.

Quick Start:
  multitenancy list                     List discovered themes
  multitenancy importmap acme --tags    Render a theme's import map tags
  multitenancy tailwind targets         Show stylesheet build targets
  multitenancy spec-paths themes/acme   Expand test paths for a theme
  multitenancy routes                   Show the engine mount table`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .multitenancy.yml, can also use MULTITENANCY_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("root", "", "application root (default is the current directory)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
}

// initConfig points viper at the config file and enables environment
// overrides. A missing default file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(config.FileName)
	}

	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Warning: cannot read config file:", err)
		}
	}
}
