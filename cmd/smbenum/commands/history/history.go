// Package history implements the commands reading recorded browse runs.
package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbenum/cmd/smbenum/cmdutil"
	"github.com/marmos91/smbenum/pkg/results"
)

// Cmd is the parent command for the run history.
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Recorded browse runs",
	Long: `Inspect the browse runs recorded in the history database.

Runs are recorded when database.enabled is set in the configuration or
when browse is given --record.

Examples:
  # Latest runs
  smbenum history list

  # Runs against one host
  smbenum history list --host fs01

  # Every object of a run
  smbenum history show 3f1c9a2e-...

  # Drop runs older than 30 days
  smbenum history prune --older-than 720h`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(pruneCmd)
}

// openStore opens the history database named by the configuration. The
// history is read even when recording is disabled, so past runs stay
// reachable.
func openStore() (*results.Store, error) {
	cfg, err := cmdutil.Setup()
	if err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	store, err := results.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return store, nil
}
