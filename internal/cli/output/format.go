// Package output renders browse results, recorded runs and configuration
// as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
)

// Format is an output format selected with --output.
type Format string

const (
	// FormatTable prints human-readable tables and summaries.
	FormatTable Format = "table"
	// FormatJSON prints JSON; browse results stream one object per line.
	FormatJSON Format = "json"
	// FormatYAML prints one YAML document per report.
	FormatYAML Format = "yaml"
)

// ParseFormat parses the --output flag. An empty value selects the table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Tone is the outcome a line or table cell reports.
type Tone int

const (
	ToneNone Tone = iota
	ToneOK
	ToneWarn
	ToneFail
	ToneMuted
)

// OutcomeTone maps a browse outcome name to its tone.
func OutcomeTone(outcome string) Tone {
	switch outcome {
	case "success":
		return ToneOK
	case "partial":
		return ToneWarn
	case "":
		return ToneNone
	default:
		return ToneFail
	}
}

func (t Tone) colors() tablewriter.Colors {
	switch t {
	case ToneOK:
		return tablewriter.Colors{tablewriter.FgGreenColor}
	case ToneWarn:
		return tablewriter.Colors{tablewriter.FgYellowColor}
	case ToneFail:
		return tablewriter.Colors{tablewriter.FgRedColor}
	case ToneMuted:
		return tablewriter.Colors{tablewriter.FgHiBlackColor}
	default:
		return nil
	}
}

// Printer writes output in one format. Colour applies to table output only.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{
		out:    out,
		format: format,
		color:  color,
	}
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func (p *Printer) Format() Format {
	return p.format
}

func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) ColorEnabled() bool {
	return p.color
}

// Print writes data in the printer's format. In table format data must
// implement TableRenderer; anything else falls back to indented JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return p.Table(renderer)
		}
		return PrintJSON(p.out, data)
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Table writes data as a table regardless of the printer's format.
func (p *Printer) Table(data TableRenderer) error {
	return renderTable(p.out, data, p.color)
}

// Details writes d as aligned "Key: value" lines.
func (p *Printer) Details(d Details) error {
	return renderDetails(p.out, d)
}

func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Status prints msg on its own line, coloured by tone when enabled.
func (p *Printer) Status(tone Tone, msg string) {
	colors := tone.colors()
	if !p.color || len(colors) == 0 {
		_, _ = fmt.Fprintln(p.out, msg)
		return
	}
	_, _ = fmt.Fprintf(p.out, "\033[%dm%s\033[0m\n", colors[0], msg)
}
