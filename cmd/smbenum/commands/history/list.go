package history

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbenum/cmd/smbenum/cmdutil"
	"github.com/marmos91/smbenum/internal/cli/timeutil"
	"github.com/marmos91/smbenum/pkg/results"
)

var (
	listHost  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Long: `List recorded runs, newest first.

Examples:
  smbenum history list
  smbenum history list --host fs01 --limit 5
  smbenum history list -o json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listHost, "host", "", "Only runs against this host")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of runs (0 for all)")
}

// RunList is a list of runs for table rendering.
type RunList []*results.Run

// Headers implements TableRenderer.
func (RunList) Headers() []string {
	return []string{"RUN ID", "STARTED", "LOCATOR", "USER", "OUTCOME", "OK", "FAILED", "DURATION"}
}

// Rows implements TableRenderer.
func (rl RunList) Rows() [][]string {
	rows := make([][]string, 0, len(rl))
	for _, r := range rl {
		rows = append(rows, []string{
			r.ID,
			timeutil.FormatTime(r.StartedAt),
			r.Locator,
			cmdutil.EmptyOr(r.User, "-"),
			r.Outcome,
			strconv.Itoa(r.Succeeds),
			strconv.Itoa(r.Fails),
			timeutil.FormatDuration(time.Duration(r.DurationMs) * time.Millisecond),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	runs, err := store.ListRuns(cmd.Context(), results.ListOptions{Host: listHost, Limit: listLimit})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), runs, len(runs) == 0, "No runs recorded.", RunList(runs))
}
