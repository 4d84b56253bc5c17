package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/smbenum/cmd/smbenum/cmdutil"
	"github.com/marmos91/smbenum/internal/cli/output"
	"github.com/marmos91/smbenum/pkg/config"
)

const redacted = "********"

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration smbenum would run with: the file, environment
overrides and defaults merged. Secrets are masked.

Examples:
  smbenum config show
  smbenum config show -o json`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	p, err := cmdutil.NewPrinter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	masked := maskSecrets(*cfg)
	if p.Format() == output.FormatJSON {
		return p.Print(masked)
	}
	return output.PrintYAML(p.Writer(), masked)
}

// maskSecrets returns a copy of cfg with every secret replaced.
func maskSecrets(cfg config.Config) config.Config {
	if cfg.Credentials.Password != "" {
		cfg.Credentials.Password = redacted
	}
	if cfg.Credentials.NTHash != "" {
		cfg.Credentials.NTHash = redacted
	}
	if cfg.Database.Postgres.Password != "" {
		cfg.Database.Postgres.Password = redacted
	}
	return cfg
}
