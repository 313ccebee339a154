// Package flags provides the flags shared by the deployer commands.
//
// Command specific flags are defined locally in the command file.
package flags

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultConfigPath is the config file read when --config is not given.
const DefaultConfigPath = "near-deployer.yml"

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// Config adds the persistent --config/-c flag. A missing file falls back to the environment.
//
// Usage:
//
//	flags.Config(cmd)
//	// later in RunE:
//	path, _ := cmd.Flags().GetString("config")
func Config(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", DefaultConfigPath, "Deployment config file")
}

// Transport adds the --transport flag overriding the configured transport.
func Transport(cmd *cobra.Command) {
	cmd.Flags().String("transport", "", `Transport to the node, "cli" or "rpc" (default from config)`)
}

// Format adds the --format/-f flag selecting the output format, yaml by default.
func Format(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", FormatYAML, `Output format, "yaml" or "json"`)
}

// GetFormat returns the --format value, rejecting unknown formats.
func GetFormat(cmd *cobra.Command) (string, error) {
	format := MustString(cmd.Flags().GetString("format"))
	switch format {
	case FormatYAML, FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected %q or %q", format, FormatYAML, FormatJSON)
	}
}

// nearCLIAliases maps near-cli flag names to the deployer's.
var nearCLIAliases = map[string]string{
	"accountId":    "signer",
	"depositYocto": "deposit-yocto",
}

// NearCLIAliases accepts the near-cli spelling of the call flags, --accountId for --signer and
// --depositYocto for --deposit-yocto, so runbook commands can be pasted as is.
//
// Usage:
//
//	cmd.Flags().String("signer", "", "Signing account")
//	flags.NearCLIAliases(cmd)
func NearCLIAliases(cmd *cobra.Command) {
	existingNormalize := cmd.Flags().GetNormalizeFunc()
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if alias, ok := nearCLIAliases[name]; ok {
			return pflag.NormalizedName(alias)
		}
		if existingNormalize != nil {
			return existingNormalize(f, name)
		}

		return pflag.NormalizedName(name)
	})
}
