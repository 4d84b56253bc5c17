package output

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/smbenum/pkg/browse"
	"github.com/marmos91/smbenum/pkg/classify"
)

// ObjectRow is the reporting form of one visited entry.
type ObjectRow struct {
	RunID       string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	User        string `json:"user" yaml:"user"`
	Host        string `json:"host" yaml:"host"`
	Share       string `json:"share" yaml:"share"`
	Object      string `json:"object,omitempty" yaml:"object,omitempty"`
	Path        string `json:"path" yaml:"path"`
	Type        string `json:"type" yaml:"type"`
	TypeCode    uint32 `json:"type_code" yaml:"type_code"`
	ACL         string `json:"acl" yaml:"acl"`
	Access      string `json:"access" yaml:"access"`
	Permissions string `json:"permissions" yaml:"permissions"`
	Hidden      bool   `json:"hidden" yaml:"hidden"`
	Depth       int    `json:"depth" yaml:"depth"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewObjectRow converts a browse result into its reporting form.
func NewObjectRow(runID string, o browse.ObjectResult) ObjectRow {
	row := ObjectRow{
		RunID:       runID,
		User:        o.User,
		Host:        o.Host,
		Share:       o.Share,
		Object:      o.Object,
		Path:        o.Path(),
		Type:        classify.Label(o.Type),
		TypeCode:    uint32(o.Type),
		ACL:         fmt.Sprintf("0x%08x", o.ACL),
		Access:      string(classify.Summarize(o.ACL)),
		Permissions: o.Permissions,
		Hidden:      o.Hidden,
		Depth:       o.Depth,
	}
	if o.Err != nil {
		row.Access = string(classify.AccessNone)
		row.Error = o.Err.Error()
	}
	return row
}

// ObjectList renders objects as a table.
type ObjectList []ObjectRow

// Headers implements TableRenderer.
func (ObjectList) Headers() []string {
	return []string{"Path", "Type", "Access", "ACL", "Hidden", "Status"}
}

// Rows implements TableRenderer.
func (l ObjectList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, o := range l {
		status := "ok"
		if o.Error != "" {
			status = o.Error
		}
		hidden := ""
		if o.Hidden {
			hidden = "yes"
		}
		rows = append(rows, []string{
			strings.Repeat("  ", o.Depth) + o.Path,
			o.Type,
			o.Access,
			o.ACL,
			hidden,
			status,
		})
	}
	return rows
}

// ToneColumn implements Toned: the status column.
func (ObjectList) ToneColumn() int { return 5 }

// RowTone implements Toned. Failed entries are red; hidden shares are muted.
func (l ObjectList) RowTone(i int) Tone {
	switch {
	case l[i].Error != "":
		return ToneFail
	case l[i].Hidden:
		return ToneMuted
	default:
		return ToneNone
	}
}

// RunRow is the reporting form of a HostResult.
type RunRow struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	Host     string `json:"host" yaml:"host"`
	Locator  string `json:"locator" yaml:"locator"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	Code     int    `json:"code" yaml:"code"`
	Succeeds int    `json:"succeeds" yaml:"succeeds"`
	Fails    int    `json:"fails" yaml:"fails"`
	Duration string `json:"duration" yaml:"duration"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

// NewRunRow converts a HostResult into its reporting form.
func NewRunRow(res browse.HostResult) RunRow {
	return RunRow{
		RunID:    res.RunID,
		Host:     res.Host,
		Locator:  res.Locator,
		User:     res.User,
		Outcome:  res.Outcome(),
		Code:     res.Code,
		Succeeds: res.Succeeds,
		Fails:    res.Fails,
		Duration: res.Duration.Round(time.Millisecond).String(),
		Message:  res.Message,
	}
}

// RunList renders run summaries as a table.
type RunList []RunRow

// Headers implements TableRenderer.
func (RunList) Headers() []string {
	return []string{"Run ID", "Locator", "User", "Outcome", "Succeeds", "Fails", "Duration", "Message"}
}

// Rows implements TableRenderer.
func (l RunList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			r.RunID,
			r.Locator,
			r.User,
			r.Outcome,
			strconv.Itoa(r.Succeeds),
			strconv.Itoa(r.Fails),
			r.Duration,
			r.Message,
		})
	}
	return rows
}

// ToneColumn implements Toned: the outcome column.
func (RunList) ToneColumn() int { return 3 }

// RowTone implements Toned.
func (l RunList) RowTone(i int) Tone { return OutcomeTone(l[i].Outcome) }

// NumericColumns implements Numeric.
func (RunList) NumericColumns() []int { return []int{4, 5} }

// Report is what the YAML and JSON formats print at the end of a run.
type Report struct {
	Result  RunRow      `json:"result" yaml:"result"`
	Objects []ObjectRow `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// Reporter prints browse runs. Several runs may report through the same
// Reporter concurrently; each gets its own RunReport and output of one run
// is never interleaved with another's.
type Reporter struct {
	p          *Printer
	showHidden bool

	mu       sync.Mutex
	yamlDocs int
}

// NewReporter returns a Reporter printing through p. Hidden shares are
// dropped from the output unless showHidden is set; they are still counted.
func NewReporter(p *Printer, showHidden bool) *Reporter {
	return &Reporter{p: p, showHidden: showHidden}
}

// Run starts the report of one run.
func (r *Reporter) Run(runID string) *RunReport {
	return &RunReport{reporter: r, runID: runID}
}

// RunReport collects one run's objects. It is a browse.Observer.
type RunReport struct {
	reporter *Reporter
	runID    string
	objects  []ObjectRow
}

// Object implements browse.Observer. JSON output is streamed one object per
// line; the other formats are buffered until Finish.
func (rr *RunReport) Object(_ context.Context, obj browse.ObjectResult) {
	if obj.Hidden && !rr.reporter.showHidden {
		return
	}
	row := NewObjectRow(rr.runID, obj)

	if rr.reporter.p.Format() == FormatJSON {
		rr.reporter.mu.Lock()
		_ = PrintJSONLine(rr.reporter.p.Writer(), row)
		rr.reporter.mu.Unlock()
		return
	}
	rr.objects = append(rr.objects, row)
}

// Finish prints the buffered objects and the summary of res.
func (rr *RunReport) Finish(res browse.HostResult) error {
	r := rr.reporter
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.p
	switch p.Format() {
	case FormatJSON:
		return PrintJSONLine(p.Writer(), Report{Result: NewRunRow(res)})
	case FormatYAML:
		first := r.yamlDocs == 0
		r.yamlDocs++
		return PrintYAMLDocument(p.Writer(), Report{Result: NewRunRow(res), Objects: rr.objects}, first)
	}

	p.Printf("\n%s (%s)\n", res.Locator, displayUser(res.User))
	if len(rr.objects) > 0 {
		if err := p.Table(ObjectList(rr.objects)); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%s: %d accessible, %d inaccessible in %s",
		res.Outcome(), res.Succeeds, res.Fails, res.Duration.Round(time.Millisecond))
	if res.IsCritical() {
		summary += ": " + res.Message
	}
	p.Status(OutcomeTone(res.Outcome()), summary)
	return nil
}

func displayUser(u string) string {
	if u == "" {
		return "no session"
	}
	return u
}
