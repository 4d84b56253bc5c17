package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Standard field keys for structured logging.
// Use these keys consistently so runs can be filtered and joined in log
// aggregation.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID
	KeySpanID  = "span_id"  // OpenTelemetry span ID

	// ========================================================================
	// Run
	// ========================================================================
	KeyRunID    = "run_id"   // Identifier of one browse run
	KeyTarget   = "target"   // Locator string as given by the user
	KeyMaxDepth = "max_depth"
	KeyCode     = "code"     // HostResult code
	KeyOutcome  = "outcome"  // success, partial or critical code name
	KeySucceeds = "succeeds" // Entries stat'ed successfully
	KeyFails    = "fails"    // Entries that failed

	// ========================================================================
	// Location
	// ========================================================================
	KeyHost  = "host"  // Server name or address
	KeyShare = "share" // Share name
	KeyPath  = "path"  // Object path within the share
	KeyDepth = "depth" // Recursion depth

	// ========================================================================
	// Objects
	// ========================================================================
	KeyType     = "type"     // Classified category
	KeyACL      = "acl"      // Raw access mask
	KeyEntries  = "entries"  // Number of listed entries
	KeyHidden   = "hidden"   // Administrative/hidden share
	KeyFailure  = "failure"  // Failure class
	KeyNTStatus = "nt_status"

	// ========================================================================
	// Identity
	// ========================================================================
	KeyUser      = "user"      // Identity the run authenticates as
	KeyWorkgroup = "workgroup" // Workgroup/domain

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyOperation  = "operation"   // Protocol operation (list, stat, mount)
)

// ----------------------------------------------------------------------------
// Run
// ----------------------------------------------------------------------------

// RunID returns a slog.Attr for the run identifier
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Target returns a slog.Attr for the raw locator string
func Target(t string) slog.Attr {
	return slog.String(KeyTarget, t)
}

// Code returns a slog.Attr for a HostResult code
func Code(code int) slog.Attr {
	return slog.Int(KeyCode, code)
}

// ----------------------------------------------------------------------------
// Location
// ----------------------------------------------------------------------------

// Host returns a slog.Attr for the server name
func Host(name string) slog.Attr {
	return slog.String(KeyHost, name)
}

// Share returns a slog.Attr for a share name
func Share(name string) slog.Attr {
	return slog.String(KeyShare, name)
}

// Path returns a slog.Attr for an object path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Depth returns a slog.Attr for the recursion depth
func Depth(d int) slog.Attr {
	return slog.Int(KeyDepth, d)
}

// ----------------------------------------------------------------------------
// Objects
// ----------------------------------------------------------------------------

// Type returns a slog.Attr for an object category
func Type(t string) slog.Attr {
	return slog.String(KeyType, t)
}

// ACL returns a slog.Attr for an access mask, rendered in hex
func ACL(mask uint32) slog.Attr {
	return slog.String(KeyACL, hex32(mask))
}

// NTStatus returns a slog.Attr for an NT status code, rendered in hex
func NTStatus(status uint32) slog.Attr {
	return slog.String(KeyNTStatus, hex32(status))
}

// Entries returns a slog.Attr for a listing size
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// ----------------------------------------------------------------------------
// Identity
// ----------------------------------------------------------------------------

// User returns a slog.Attr for the authenticated identity
func User(u string) slog.Attr {
	return slog.String(KeyUser, u)
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMs, float64(d.Microseconds())/1000.0)
}

// Err returns a slog.Attr for an error, or an empty attr for nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Operation returns a slog.Attr for a protocol operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}
