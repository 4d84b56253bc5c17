package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbenum/cmd/smbenum/cmdutil"
	"github.com/marmos91/smbenum/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the smbenum configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  smbenum config validate

  # Validate specific config file
  smbenum config validate --config /etc/smbenum/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath := cmdutil.Flags.ConfigFile

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Credentials.Password != "" {
		warnings = append(warnings, "Password stored in plain text - prefer SMBENUM_CREDENTIALS_PASSWORD or --ask-password")
	}
	if cfg.Browse.MaxDepth > 8 {
		warnings = append(warnings, fmt.Sprintf("max_depth %d can make large shares slow to walk", cfg.Browse.MaxDepth))
	}
	if cfg.Browse.Concurrency > 32 && cfg.Browse.RateLimit == 0 {
		warnings = append(warnings, "High concurrency without rate_limit may trip intrusion detection")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	identity := "anonymous"
	if creds, err := cfg.Credentials.AuthCredentials(); err == nil {
		identity = creds.Identity()
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Identity:        %s\n", identity)
	_, _ = fmt.Fprintf(out, "  Max depth:       %d\n", cfg.Browse.MaxDepth)
	_, _ = fmt.Fprintf(out, "  Concurrency:     %d\n", cfg.Browse.Concurrency)
	_, _ = fmt.Fprintf(out, "  Run history:     %s\n", cmdutil.BoolToYesNo(cfg.Database.Enabled))
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
