package history

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbenum/cmd/smbenum/cmdutil"
	"github.com/marmos91/smbenum/internal/cli/output"
	"github.com/marmos91/smbenum/internal/cli/timeutil"
	"github.com/marmos91/smbenum/pkg/classify"
	"github.com/marmos91/smbenum/pkg/results"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

var showHidden bool

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a recorded run and its objects",
	Long: `Show a recorded run: its outcome and every object it visited, in
traversal order.

Examples:
  smbenum history show 3f1c9a2e-5b7d-4c1e-9f0a-2d8e6b4a1c33
  smbenum history show 3f1c9a2e-5b7d-4c1e-9f0a-2d8e6b4a1c33 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showHidden, "show-hidden", false, "Show administrative shares (NAME$)")
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	run, err := store.GetRun(cmd.Context(), args[0])
	if errors.Is(err, results.ErrRunNotFound) {
		return fmt.Errorf("no run with ID %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	p, err := cmdutil.NewPrinter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	report := output.Report{
		Result:  output.NewRunRow(run.Result()),
		Objects: objectRows(run, showHidden),
	}
	if p.Format() != output.FormatTable {
		return p.Print(report)
	}

	if err := p.Details(runDetails(run)); err != nil {
		return err
	}
	if len(report.Objects) == 0 {
		return nil
	}
	p.Println()
	return p.Table(output.ObjectList(report.Objects))
}

// runDetails is the header block printed above a run's objects.
func runDetails(run *results.Run) output.Details {
	var d output.Details
	d.Add("Run", run.ID)
	d.Add("Locator", run.Locator)
	d.Add("User", cmdutil.EmptyOr(run.User, "-"))
	d.Add("Started", timeutil.FormatTime(run.StartedAt))
	d.Add("Max depth", strconv.Itoa(run.MaxDepth))
	d.Add("Outcome", fmt.Sprintf("%s (%d accessible, %d inaccessible)", run.Outcome, run.Succeeds, run.Fails))
	d.Add("Message", run.Message)
	return d
}

// objectRows converts stored objects into their reporting form.
func objectRows(run *results.Run, withHidden bool) []output.ObjectRow {
	rows := make([]output.ObjectRow, 0, len(run.Objects))
	for _, o := range run.Objects {
		if o.Hidden && !withHidden {
			continue
		}
		row := output.ObjectRow{
			RunID:       run.ID,
			User:        run.User,
			Host:        run.Host,
			Share:       o.Share,
			Object:      objectName(run.Host, o),
			Path:        o.Path,
			Type:        classify.Label(smbclient.EntryType(o.TypeCode)),
			TypeCode:    o.TypeCode,
			ACL:         fmt.Sprintf("0x%08x", o.ACL),
			Access:      string(classify.Summarize(o.ACL)),
			Permissions: o.Permissions,
			Hidden:      o.Hidden,
			Depth:       o.Depth,
			Error:       o.Error,
		}
		if o.Error != "" {
			row.Access = string(classify.AccessNone)
		}
		rows = append(rows, row)
	}
	return rows
}

// objectName recovers the share-relative object path from the stored UNC
// path, e.g. `\\fs01\public\docs\a.txt` -> "docs/a.txt".
func objectName(host string, o results.Object) string {
	rest, ok := strings.CutPrefix(o.Path, `\\`+host+`\`+o.Share+`\`)
	if !ok {
		return ""
	}
	return strings.ReplaceAll(rest, `\`, "/")
}
