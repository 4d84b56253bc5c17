package history

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbenum/internal/cli/prompt"
	"github.com/marmos91/smbenum/internal/cli/timeutil"
)

var (
	pruneOlderThan time.Duration
	pruneForce     bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Long: `Delete runs (and their objects) started before now minus --older-than.

Examples:
  # Keep the last 30 days
  smbenum history prune --older-than 720h

  # Without confirmation
  smbenum history prune --older-than 24h --force`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "Age of the runs to delete")
	pruneCmd.Flags().BoolVarP(&pruneForce, "force", "f", false, "Skip confirmation prompt")
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneOlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	label := fmt.Sprintf("Delete runs older than %s", timeutil.FormatDuration(pruneOlderThan))
	confirmed, err := prompt.ConfirmWithForce(label, pruneForce)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	n, err := store.PruneBefore(cmd.Context(), time.Now().Add(-pruneOlderThan))
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s).\n", n)
	return nil
}
