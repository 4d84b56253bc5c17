package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by types that can render themselves as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// Toned is implemented by tables whose rows carry an outcome. Only the cell
// in ToneColumn is coloured, and only when the printer has colour enabled.
type Toned interface {
	ToneColumn() int
	RowTone(i int) Tone
}

// Numeric is implemented by tables with right-aligned count columns.
type Numeric interface {
	NumericColumns() []int
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func renderTable(w io.Writer, data TableRenderer, color bool) error {
	headers := data.Headers()
	table := newTable(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(true)

	if n, ok := data.(Numeric); ok {
		align := make([]int, len(headers))
		for i := range align {
			align[i] = tablewriter.ALIGN_LEFT
		}
		for _, col := range n.NumericColumns() {
			if col >= 0 && col < len(align) {
				align[col] = tablewriter.ALIGN_RIGHT
			}
		}
		table.SetColumnAlignment(align)
	}

	toned, ok := data.(Toned)
	for i, row := range data.Rows() {
		if !ok || !color {
			table.Append(row)
			continue
		}
		colors := make([]tablewriter.Colors, len(row))
		if col := toned.ToneColumn(); col >= 0 && col < len(row) {
			colors[col] = toned.RowTone(i).colors()
		}
		table.Rich(row, colors)
	}

	table.Render()
	return nil
}

// Details is a block of "Key: value" lines, printed above a table in
// detail views such as a recorded run.
type Details [][2]string

// Add appends a line. Empty values are skipped.
func (d *Details) Add(key, value string) {
	if value == "" {
		return
	}
	*d = append(*d, [2]string{key + ":", value})
}

func renderDetails(w io.Writer, d Details) error {
	table := newTable(w)
	table.SetAutoFormatHeaders(false)
	for _, line := range d {
		table.Append([]string{line[0], line[1]})
	}
	table.Render()
	return nil
}
