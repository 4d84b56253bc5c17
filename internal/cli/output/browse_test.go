package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/smbenum/internal/smb/types"
	"github.com/marmos91/smbenum/pkg/browse"
	"github.com/marmos91/smbenum/pkg/classify"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

func share(name string, hidden bool) browse.ObjectResult {
	return browse.ObjectResult{
		User:        `CORP\alice`,
		Host:        "fs01",
		Share:       name,
		Type:        smbclient.TypeFileShare,
		ACL:         types.AccessReadOnly,
		Hidden:      hidden,
		Category:    classify.CategoryFileShare,
		Permissions: classify.ACL(types.AccessReadOnly),
	}
}

func result() browse.HostResult {
	return browse.HostResult{
		Code:     browse.CodePartial,
		Message:  "1 of 3 entries could not be read",
		Succeeds: 2,
		Fails:    1,
		RunID:    "r1",
		Host:     "fs01",
		User:     `CORP\alice`,
		Locator:  "smb://fs01",
		Duration: 1500 * time.Millisecond,
	}
}

func TestNewObjectRow(t *testing.T) {
	row := NewObjectRow("r1", share("public", false))

	assert.Equal(t, "r1", row.RunID)
	assert.Equal(t, `\\fs01\public`, row.Path)
	assert.Equal(t, "file-share", row.Type)
	assert.Equal(t, uint32(smbclient.TypeFileShare), row.TypeCode)
	assert.Equal(t, "0x001200a9", row.ACL)
	assert.Equal(t, string(classify.AccessRead), row.Access)
	assert.Empty(t, row.Error)

	failed := share("secret", false)
	failed.ACL = 0
	failed.Err = errors.New("mount secret: STATUS_ACCESS_DENIED")
	row = NewObjectRow("r1", failed)
	assert.Equal(t, string(classify.AccessNone), row.Access)
	assert.Equal(t, "mount secret: STATUS_ACCESS_DENIED", row.Error)
}

func TestNewRunRow(t *testing.T) {
	row := NewRunRow(result())

	assert.Equal(t, "partial", row.Outcome)
	assert.Equal(t, 0, row.Code)
	assert.Equal(t, "1.5s", row.Duration)

	rows := RunList{row}.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"r1", "smb://fs01", `CORP\alice`, "partial", "2", "1", "1.5s", row.Message}, rows[0])
}

func TestReporter_Table(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewPrinter(&buf, FormatTable, false), false)

	run := r.Run("r1")
	run.Object(context.Background(), share("ADMIN$", true))
	run.Object(context.Background(), share("public", false))
	require.NoError(t, run.Finish(result()))

	out := buf.String()
	assert.Contains(t, out, `smb://fs01 (CORP\alice)`)
	assert.Contains(t, out, `\\fs01\public`)
	assert.NotContains(t, out, "ADMIN$")
	assert.Contains(t, out, "partial: 2 accessible, 1 inaccessible")
}

func TestReporter_ShowHidden(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewPrinter(&buf, FormatTable, false), true)

	run := r.Run("r1")
	run.Object(context.Background(), share("ADMIN$", true))
	require.NoError(t, run.Finish(result()))

	assert.Contains(t, buf.String(), `\\fs01\ADMIN$`)
}

func TestReporter_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewPrinter(&buf, FormatJSON, false), false)

	run := r.Run("r1")
	run.Object(context.Background(), share("public", false))
	require.NoError(t, run.Finish(result()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var obj ObjectRow
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &obj))
	assert.Equal(t, "public", obj.Share)

	var rep Report
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rep))
	assert.Equal(t, "partial", rep.Result.Outcome)
	assert.Empty(t, rep.Objects)
}

func TestReporter_YAML(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewPrinter(&buf, FormatYAML, false), false)

	run := r.Run("r1")
	run.Object(context.Background(), share("public", false))
	require.NoError(t, run.Finish(result()))

	out := buf.String()
	assert.Contains(t, out, "result:")
	assert.Contains(t, out, "outcome: partial")
	assert.Contains(t, out, "- run_id: r1")
	assert.Contains(t, out, "share: public")
}

func TestReporter_YAMLSeveralRuns(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewPrinter(&buf, FormatYAML, false), false)

	for _, id := range []string{"r1", "r2"} {
		run := r.Run(id)
		run.Object(context.Background(), share("public", false))
		res := result()
		res.RunID = id
		require.NoError(t, run.Finish(res))
	}

	dec := yaml.NewDecoder(&buf)
	var ids []string
	for {
		var rep Report
		if err := dec.Decode(&rep); err != nil {
			break
		}
		ids = append(ids, rep.Result.RunID)
		assert.Len(t, rep.Objects, 1)
	}
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

func TestNewObjectRow_UnknownType(t *testing.T) {
	obj := share("odd", false)
	obj.Type = smbclient.EntryType(42)
	obj.Category = classify.CategoryUnknown

	assert.Equal(t, "unknown(42)", NewObjectRow("r1", obj).Type)
}

func TestReporter_ConcurrentRunsDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewPrinter(&buf, FormatJSON, false), false)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run := r.Run(string(rune('a' + i)))
			for range 20 {
				run.Object(context.Background(), share("public", false))
			}
			_ = run.Finish(result())
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.True(t, json.Valid([]byte(line)), line)
	}
}
