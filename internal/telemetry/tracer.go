package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for browse spans. Location keys follow the OpenTelemetry
// server.* convention; the rest use an smb. or browse. prefix.
const (
	AttrServerAddress = "server.address"
	AttrServerPort    = "server.port"

	AttrShare    = "smb.share"
	AttrPath     = "smb.path"
	AttrLevel    = "smb.level"
	AttrEntries  = "smb.entries"
	AttrNTStatus = "smb.nt_status"

	AttrRunID    = "browse.run_id"
	AttrDepth    = "browse.depth"
	AttrMaxDepth = "browse.max_depth"
	AttrCode     = "browse.code"
	AttrSucceeds = "browse.succeeds"
	AttrFails    = "browse.fails"

	AttrUsername = "user.name"
)

// Span names. Format: <component>.<operation>
const (
	SpanTarget = "browse.target" // one orchestrated run
	SpanBrowse = "browse.list"   // one recursive listing call
)

func ServerAddress(host string) attribute.KeyValue {
	return attribute.String(AttrServerAddress, host)
}

func ServerPort(port int) attribute.KeyValue {
	return attribute.Int(AttrServerPort, port)
}

func Share(name string) attribute.KeyValue {
	return attribute.String(AttrShare, name)
}

func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

func Level(level string) attribute.KeyValue {
	return attribute.String(AttrLevel, level)
}

func Entries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

func NTStatus(status uint32) attribute.KeyValue {
	return attribute.String(AttrNTStatus, fmt.Sprintf("0x%08x", status))
}

func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

func Depth(d int) attribute.KeyValue {
	return attribute.Int(AttrDepth, d)
}

func MaxDepth(d int) attribute.KeyValue {
	return attribute.Int(AttrMaxDepth, d)
}

func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Result returns the aggregate attributes of a finished browse call.
func Result(code, succeeds, fails int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrCode, code),
		attribute.Int(AttrSucceeds, succeeds),
		attribute.Int(AttrFails, fails),
	}
}

// StartTargetSpan starts the root span of a run against host:port. A zero
// port is left out.
func StartTargetSpan(ctx context.Context, host string, port, maxDepth int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := []attribute.KeyValue{ServerAddress(host), MaxDepth(maxDepth)}
	if port > 0 {
		all = append(all, ServerPort(port))
	}
	all = append(all, attrs...)
	return StartSpan(ctx, SpanTarget, trace.WithAttributes(all...))
}

// StartBrowseSpan starts the span of one listing call at depth.
func StartBrowseSpan(ctx context.Context, path string, depth int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Path(path), Depth(depth)}, attrs...)
	return StartSpan(ctx, SpanBrowse, trace.WithAttributes(all...))
}
