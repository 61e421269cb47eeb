package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Output formats shared by the listing commands.
var (
	listFormats    = []string{"table", "json", "yaml"}
	versionFormats = []string{"text", "json", "yaml"}
)

// addOutputFlag registers -o/--output on cmd, restricted to formats.
func addOutputFlag(cmd *cobra.Command, target *string, formats []string) {
	cmd.Flags().StringVarP(target, "output", "o", formats[0],
		fmt.Sprintf("Output format (%s)", strings.Join(formats, "|")))
	AddFlagValidation(cmd, "output", func(format string) error {
		return validateFormat(format, formats)
	})
}

func validateFormat(format string, formats []string) error {
	for _, f := range formats {
		if strings.EqualFold(format, f) {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q, must be one of: %s", format, strings.Join(formats, ", "))
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}
