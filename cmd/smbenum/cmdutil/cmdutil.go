// Package cmdutil holds the state and helpers shared by smbenum commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/smbenum/internal/cli/output"
	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/pkg/config"
)

// GlobalFlags are the persistent flags of the root command.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	NoColor    bool
	LogLevel   string
	Verbose    bool
}

// Flags is synced from the root command before any subcommand runs.
var Flags GlobalFlags

// ExitError makes main exit with Code. Err, when set, is printed first.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// LoadConfig loads the configuration. A --config path that does not exist is
// an error; without --config a missing default file falls back to defaults
// and environment variables.
func LoadConfig() (*config.Config, error) {
	if Flags.ConfigFile != "" {
		return config.MustLoad(Flags.ConfigFile)
	}
	return config.Load("")
}

// Setup loads the configuration, applies the logging flags and initializes
// the logger.
func Setup() (*config.Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	switch {
	case Flags.LogLevel != "":
		cfg.Logging.Level = Flags.LogLevel
	case Flags.Verbose, cfg.Browse.DebugLevel > 0:
		// protocol debug output is emitted at DEBUG
		cfg.Logging.Level = "DEBUG"
	}

	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(cfg.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ConfigSource describes where the configuration was loaded from.
func ConfigSource() string {
	if Flags.ConfigFile != "" {
		return Flags.ConfigFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// Printer returns a printer for stdout honoring --output and --no-color.
func Printer() (*output.Printer, error) {
	return NewPrinter(os.Stdout)
}

// NewPrinter returns a printer for w honoring --output and --no-color.
func NewPrinter(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	color := !Flags.NoColor && w == os.Stdout && output.StdoutIsTerminal()
	return output.NewPrinter(w, format, color), nil
}

// PrintOutput prints data in the selected format. In table format an empty
// result prints emptyMsg instead of an empty table.
func PrintOutput(w io.Writer, data any, empty bool, emptyMsg string, renderer output.TableRenderer) error {
	p, err := NewPrinter(w)
	if err != nil {
		return err
	}
	if p.Format() == output.FormatTable {
		if empty {
			p.Println(emptyMsg)
			return nil
		}
		return p.Print(renderer)
	}
	return p.Print(data)
}

// EmptyOr returns s, or fallback when s is empty.
func EmptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// BoolToYesNo renders b as "yes" or "no".
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
