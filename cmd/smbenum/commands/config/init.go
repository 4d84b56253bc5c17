package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbenum/cmd/smbenum/cmdutil"
	"github.com/marmos91/smbenum/internal/cli/prompt"
	"github.com/marmos91/smbenum/pkg/config"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Write a configuration file holding every setting at its default value.

The file is created with 0600 permissions since it may later hold
credentials. An existing file is kept unless --force is given.

Examples:
  # Create $XDG_CONFIG_HOME/smbenum/config.yaml
  smbenum config init

  # Create it elsewhere
  smbenum config init --config ./smbenum.yaml

  # Answer a few questions instead of taking every default
  smbenum config init --interactive`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cmdutil.Flags.ConfigFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.GetDefaultConfig()
	if initInteractive {
		if err := askSettings(cfg); err != nil {
			if prompt.IsAborted(err) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	if err := config.WriteConfig(cfg, path, initForce); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Set credentials.username (and a password or nt_hash) to browse as a user")
	_, _ = fmt.Fprintln(out, "  2. Browse a host with: smbenum browse smb://HOST")
	return nil
}

// askSettings fills the main settings of cfg interactively. Passwords are
// never asked here: they belong in the environment or a prompt at browse time.
func askSettings(cfg *config.Config) error {
	var err error

	if cfg.Credentials.Workgroup, err = prompt.InputOptional("Workgroup or domain", cfg.Credentials.Workgroup); err != nil {
		return err
	}
	if cfg.Credentials.Username, err = prompt.InputOptional("User name (empty for anonymous)", cfg.Credentials.Username); err != nil {
		return err
	}
	if cfg.Browse.MaxDepth, err = prompt.InputInt("Max depth", cfg.Browse.MaxDepth, 0, 64); err != nil {
		return err
	}
	if cfg.Browse.Concurrency, err = prompt.InputInt("Concurrent targets", cfg.Browse.Concurrency, 1, 256); err != nil {
		return err
	}

	if cfg.Logging.Format, err = prompt.Select("Log format", []prompt.SelectOption{
		{Label: "text", Value: "text", Description: "Human readable, colored on terminals"},
		{Label: "json", Value: "json", Description: "One JSON object per line"},
	}, cfg.Logging.Format); err != nil {
		return err
	}

	if cfg.Database.Enabled, err = prompt.Confirm("Record runs in the history database", false); err != nil {
		return err
	}
	if cfg.Database.Enabled {
		if cfg.Database.SQLite.Path, err = prompt.Input("History database path", cfg.Database.SQLite.Path); err != nil {
			return err
		}
	}
	return nil
}
