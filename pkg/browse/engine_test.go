package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/marmos91/smbenum/internal/smb/types"
	"github.com/marmos91/smbenum/internal/telemetry"
	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/classify"
	"github.com/marmos91/smbenum/pkg/locator"
	"github.com/marmos91/smbenum/pkg/smbclient"
	"github.com/marmos91/smbenum/pkg/smbclient/smbtest"
)

// fixture is a host with entries at three levels:
//
//	fs01
//	├── ADMIN$
//	├── IPC$
//	├── public
//	│   ├── docs
//	│   │   ├── a.txt
//	│   │   └── b.txt
//	│   ├── readme.md
//	│   └── empty
//	└── home
//	    └── alice
//	        └── notes.txt
func fixture() *smbtest.Server {
	return smbtest.NewServer("fs01",
		smbtest.Share("ADMIN$"),
		smbtest.IPC("IPC$"),
		smbtest.Share("public",
			smbtest.Dir("docs",
				smbtest.File("a.txt"),
				smbtest.File("b.txt"),
			),
			smbtest.File("readme.md"),
			smbtest.Dir("empty"),
		),
		smbtest.Share("home",
			smbtest.Dir("alice",
				smbtest.File("notes.txt"),
			),
		),
	)
}

func openHandle(t *testing.T, srv *smbtest.Server) (*smbclient.Manager, *smbclient.Handle) {
	t.Helper()
	m := smbclient.NewManager(srv.Dialer(), auth.NewStatic(auth.Credentials{Username: "alice"}), smbclient.DefaultOptions(), nil)
	h, err := m.Create(context.Background(), locator.MustParse("smb://"+srv.Host))
	require.NoError(t, err)
	t.Cleanup(func() { m.Destroy(h) })
	return m, h
}

func TestEngine_AggregationInvariant(t *testing.T) {
	for maxDepth := 0; maxDepth <= 2; maxDepth++ {
		srv := fixture()
		_, h := openHandle(t, srv)
		c := &Collector{}

		res := NewEngine(c, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), maxDepth, 0)

		assert.True(t, res.IsSuccess(), "depth %d: %s", maxDepth, res.Message)
		assert.Equal(t, srv.Count(maxDepth), res.Succeeds+res.Fails, "depth %d", maxDepth)
		assert.Len(t, c.Objects, res.Visited(), "depth %d", maxDepth)
	}
}

func TestEngine_KnownCounts(t *testing.T) {
	tests := []struct {
		maxDepth int
		want     int
	}{
		{0, 4},  // shares
		{1, 9},  // + docs, readme.md, empty, alice
		{2, 12}, // + a.txt, b.txt, notes.txt
		{5, 12},
	}

	for _, tt := range tests {
		srv := fixture()
		_, h := openHandle(t, srv)

		res := NewEngine(nil, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), tt.maxDepth, 0)
		assert.Equal(t, CodeSuccess, res.Code)
		assert.Equal(t, tt.want, res.Succeeds, "maxDepth %d", tt.maxDepth)
		assert.Zero(t, res.Fails)
	}
}

func TestEngine_DepthZeroListsOnlyStart(t *testing.T) {
	srv := fixture()
	_, h := openHandle(t, srv)

	res := NewEngine(nil, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 0, 0)

	assert.Equal(t, 4, res.Succeeds)
	assert.Equal(t, []string{"smb://fs01"}, srv.ListCalls())
}

func TestEngine_StartBelowServer(t *testing.T) {
	srv := fixture()
	_, h := openHandle(t, srv)
	c := &Collector{}

	res := NewEngine(c, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01/public/docs"), 3, 0)

	assert.True(t, res.IsSuccess())
	assert.Equal(t, 2, res.Succeeds)
	require.Len(t, c.Objects, 2)
	assert.Equal(t, "docs/a.txt", c.Objects[0].Object)
	assert.Equal(t, `\\fs01\public\docs\a.txt`, c.Objects[0].Path())
}

func TestEngine_StatFailureIsPartial(t *testing.T) {
	srv := smbtest.NewServer("fs01",
		smbtest.Share("public",
			smbtest.File("a"),
			smbtest.File("locked").FailStat(smbtest.Denied("stat", "locked")),
			smbtest.File("c"),
		),
	)
	_, h := openHandle(t, srv)
	c := &Collector{}

	res := NewEngine(c, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 1, 0)

	assert.Equal(t, CodePartial, res.Code)
	assert.Equal(t, 3, res.Succeeds)
	assert.Equal(t, 1, res.Fails)
	assert.Contains(t, res.Message, "locked")
	assert.Contains(t, res.Message, "1 of 4")

	// Siblings after the failing entry are still visited.
	require.Len(t, c.Objects, 4)
	assert.False(t, c.Objects[2].OK())
	assert.Equal(t, "c", c.Objects[3].Object)
}

func TestEngine_FailedShareIsNotDescended(t *testing.T) {
	srv := smbtest.NewServer("fs01",
		smbtest.Share("secret", smbtest.File("x")).FailStat(smbtest.Denied("mount", "secret")),
		smbtest.Share("public", smbtest.File("y")),
	)
	_, h := openHandle(t, srv)

	res := NewEngine(nil, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 2, 0)

	assert.Equal(t, CodePartial, res.Code)
	assert.Equal(t, 2, res.Succeeds)
	assert.Equal(t, 1, res.Fails)
	assert.NotContains(t, srv.ListCalls(), "smb://fs01/secret")
}

func TestEngine_CriticalEscalation(t *testing.T) {
	srv := smbtest.NewServer("fs01",
		smbtest.Share("a",
			smbtest.Dir("d1", smbtest.File("f")),
			smbtest.Dir("broken").FailList(&smbclient.StatusError{
				Op: "list", Path: "broken", Status: types.StatusUserSessionDeleted,
			}),
			smbtest.Dir("d3", smbtest.File("g")),
		),
		smbtest.Share("b", smbtest.File("h")),
	)
	m, h := openHandle(t, srv)

	res := NewEngine(nil, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 5, 0)

	assert.Equal(t, CodeUnreachable, res.Code)
	assert.Contains(t, res.Message, "broken")

	// Counters so far: share a, d1, f, broken.
	assert.Equal(t, 4, res.Succeeds)
	assert.Zero(t, res.Fails)

	// Neither the later sibling nor the later share was visited.
	for _, call := range append(srv.ListCalls(), srv.StatCalls()...) {
		assert.NotContains(t, call, "d3")
		assert.NotEqual(t, "smb://fs01/b", call)
	}

	m.Destroy(h)
	assert.Equal(t, 1, srv.Closes())
}

func TestEngine_ListFailureCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"access denied", smbtest.Denied("list", "x"), CodeAccessDenied},
		{"protocol", &smbclient.StatusError{Op: "list", Status: types.StatusInvalidParameter}, CodeProtocol},
		{"cancelled", context.Canceled, CodeCancelled},
		{"other", errors.New("boom"), CodeListFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fixture()
			srv.ListErr = tt.err
			_, h := openHandle(t, srv)

			res := NewEngine(nil, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 2, 0)

			assert.Equal(t, tt.want, res.Code)
			assert.NotEmpty(t, res.Message)
			assert.Zero(t, res.Visited())
			assert.Empty(t, srv.StatCalls())
		})
	}
}

func TestEngine_Deterministic(t *testing.T) {
	run := func() (HostResult, []string) {
		srv := smbtest.NewServer("fs01",
			smbtest.Share("public",
				smbtest.Dir("docs", smbtest.File("a"), smbtest.File("b").FailStat(smbtest.Denied("stat", "b"))),
				smbtest.File("c"),
			),
			smbtest.Share("home", smbtest.Dir("x")),
		)
		_, h := openHandle(t, srv)
		c := &Collector{}
		res := NewEngine(c, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 3, 0)

		var paths []string
		for _, o := range c.Objects {
			paths = append(paths, o.Path())
		}
		return res, paths
	}

	r1, p1 := run()
	r2, p2 := run()

	assert.Equal(t, r1.Code, r2.Code)
	assert.Equal(t, r1.Succeeds, r2.Succeeds)
	assert.Equal(t, r1.Fails, r2.Fails)
	assert.Equal(t, r1.Message, r2.Message)
	assert.Equal(t, p1, p2)
}

func TestEngine_ObjectFields(t *testing.T) {
	srv := smbtest.NewServer("fs01",
		smbtest.Share("ADMIN$"),
		smbtest.IPC("IPC$"),
		smbtest.Share("public", smbtest.Raw("odd", smbclient.EntryType(42))),
	)
	_, h := openHandle(t, srv)
	c := &Collector{}

	res := NewEngine(c, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 1, 0)
	require.True(t, res.IsSuccess(), res.Message)
	require.Len(t, c.Objects, 4)

	admin := c.Objects[0]
	assert.True(t, admin.Hidden)
	assert.Equal(t, "alice", admin.User)
	assert.Equal(t, "fs01", admin.Host)
	assert.Equal(t, classify.CategoryFileShare, admin.Category)
	assert.Equal(t, types.AccessReadOnly, admin.ACL)
	assert.Equal(t, classify.ACLFor(classify.CategoryFileShare, types.AccessReadOnly), admin.Permissions)

	ipc := c.Objects[1]
	assert.True(t, ipc.Hidden)
	assert.Equal(t, classify.CategoryIPCShare, ipc.Category)

	public := c.Objects[2]
	assert.False(t, public.Hidden)
	assert.Equal(t, 0, public.Depth)

	odd := c.Objects[3]
	assert.Equal(t, classify.CategoryUnknown, odd.Category)
	assert.Equal(t, smbclient.EntryType(42), odd.Type)
	assert.Equal(t, 1, odd.Depth)
	assert.False(t, odd.Hidden)
}

func TestEngine_CancelledStat(t *testing.T) {
	srv := smbtest.NewServer("fs01",
		smbtest.Share("public", smbtest.File("a"), smbtest.File("b")),
	)
	_, h := openHandle(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	obs := ObserverFunc(func(_ context.Context, o ObjectResult) {
		if o.Object == "a" {
			cancel()
		}
	})

	res := NewEngine(obs, nil).Browse(ctx, h, locator.MustParse("smb://fs01"), 1, 0)

	assert.Equal(t, CodeCancelled, res.Code)
	assert.True(t, res.IsCritical())
	assert.Equal(t, 2, res.Succeeds)
}

func TestEngine_SpanAttributes(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	telemetry.UseTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { _, _ = telemetry.Init(context.Background(), telemetry.Config{}) })

	srv := smbtest.NewServer("fs01",
		smbtest.Share("public", smbtest.File("a"), smbtest.File("b")),
		smbtest.Share("locked", smbtest.Dir("x").FailList(&smbclient.StatusError{
			Op: "list", Path: "x", Status: types.StatusAccessDenied,
		})),
	)
	_, h := openHandle(t, srv)

	res := NewEngine(nil, nil).Browse(context.Background(), h, locator.MustParse("smb://fs01"), 2, 0)
	require.Equal(t, CodeAccessDenied, res.Code)

	byPath := make(map[string]map[string]any)
	for _, span := range sr.Ended() {
		kv := make(map[string]any)
		for _, a := range span.Attributes() {
			kv[string(a.Key)] = a.Value.AsInterface()
		}
		byPath[kv[telemetry.AttrPath].(string)] = kv
	}

	assert.Equal(t, int64(2), byPath["smb://fs01"][telemetry.AttrEntries])
	assert.Equal(t, int64(2), byPath["smb://fs01/public"][telemetry.AttrEntries])
	assert.Equal(t, "0xc0000022", byPath["smb://fs01/locked/x"][telemetry.AttrNTStatus])
	assert.NotContains(t, byPath["smb://fs01/locked/x"], telemetry.AttrEntries)
}

func TestObservers(t *testing.T) {
	var a, b []string
	obs := Observers{
		ObserverFunc(func(_ context.Context, o ObjectResult) { a = append(a, o.Share) }),
		nil,
		ObserverFunc(func(_ context.Context, o ObjectResult) { b = append(b, o.Share) }),
	}

	obs.Object(context.Background(), ObjectResult{Share: "x"})
	assert.Equal(t, []string{"x"}, a)
	assert.Equal(t, []string{"x"}, b)
}

func TestCodeName(t *testing.T) {
	assert.Equal(t, "success", CodeName(-1))
	assert.Equal(t, "success", CodeName(-7))
	assert.Equal(t, "partial", CodeName(0))
	assert.Equal(t, "unreachable", CodeName(CodeUnreachable))
	assert.Equal(t, "critical(99)", CodeName(99))
}
