// Package config implements the configuration management commands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for configuration management.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage the smbenum configuration file.

Examples:
  # Create the default configuration
  smbenum config init

  # Print the effective configuration (file, environment and defaults)
  smbenum config show

  # Check a configuration file
  smbenum config validate --config ./smbenum.yaml`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
	Cmd.AddCommand(editCmd)
}
