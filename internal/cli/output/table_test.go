package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objects() ObjectList {
	return ObjectList{
		{Path: `\\fs01\ADMIN$`, Type: "file-share", Access: "READ", ACL: "0x001200a9", Hidden: true},
		{Path: `\\fs01\public`, Type: "file-share", Access: "READ", ACL: "0x001200a9"},
		{Path: `\\fs01\public\docs`, Type: "directory", Access: "NO ACCESS", ACL: "0x00000000", Depth: 1, Error: "stat docs: STATUS_ACCESS_DENIED"},
		{Path: `\\fs01\public\odd`, Type: "unknown(42)", Access: "READ", ACL: "0x001200a9", Depth: 1},
	}
}

func TestPrinterTable_Objects(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Table(objects()))

	out := buf.String()
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "ACCESS")
	assert.Contains(t, out, `  \\fs01\public\docs`)
	assert.Contains(t, out, "STATUS_ACCESS_DENIED")
	assert.Contains(t, out, "unknown(42)")
	assert.NotContains(t, out, "\033[")
}

func TestPrinterTable_ObjectTones(t *testing.T) {
	l := objects()
	assert.Equal(t, ToneMuted, l.RowTone(0))
	assert.Equal(t, ToneNone, l.RowTone(1))
	assert.Equal(t, ToneFail, l.RowTone(2))
	assert.Equal(t, "Status", l.Headers()[l.ToneColumn()])

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, true).Table(l))

	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, "STATUS_ACCESS_DENIED"):
			assert.Contains(t, line, "\033[31m")
		case strings.Contains(line, `\\fs01\public\odd`):
			assert.NotContains(t, line, "\033[")
		}
	}
}

func TestPrinterTable_Runs(t *testing.T) {
	runs := RunList{
		{RunID: "r1", Locator: "smb://fs01", Outcome: "success", Succeeds: 12, Duration: "1s"},
		{RunID: "r2", Locator: "smb://fs02", Outcome: "partial", Succeeds: 3, Fails: 1, Duration: "2s"},
		{RunID: "r3", Locator: "smb://fs03", Outcome: "unreachable", Duration: "5s"},
	}
	assert.Equal(t, "Outcome", runs.Headers()[runs.ToneColumn()])
	for _, col := range runs.NumericColumns() {
		assert.Contains(t, []string{"Succeeds", "Fails"}, runs.Headers()[col])
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, true).Table(runs))

	out := buf.String()
	assert.Contains(t, out, "\033[32msuccess")
	assert.Contains(t, out, "\033[33mpartial")
	assert.Contains(t, out, "\033[31munreachable")
}

func TestDetails(t *testing.T) {
	var d Details
	d.Add("Run", "r1")
	d.Add("Message", "")
	d.Add("Max depth", "3")
	require.Len(t, d, 2)

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Details(d))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Run:"))
	assert.True(t, strings.HasPrefix(lines[1], "Max depth:"))
	// Values line up in one column.
	assert.Equal(t, strings.Index(lines[0], "r1"), strings.Index(lines[1], "3"))
}
