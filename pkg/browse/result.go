package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/marmos91/smbenum/pkg/classify"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

// HostResult codes. Negative is success, zero is partial failure, positive
// is a critical failure that stopped the walk.
const (
	CodeSuccess = -1
	CodePartial = 0

	CodeUnreachable      = 1
	CodeAccessDenied     = 2
	CodeProtocol         = 3
	CodeConnectionInit   = 4
	CodeMalformedLocator = 5
	CodeCancelled        = 6
	CodeListFailed       = 7
)

var codeNames = map[int]string{
	CodeSuccess:          "success",
	CodePartial:          "partial",
	CodeUnreachable:      "unreachable",
	CodeAccessDenied:     "access-denied",
	CodeProtocol:         "protocol-error",
	CodeConnectionInit:   "connection-init",
	CodeMalformedLocator: "malformed-locator",
	CodeCancelled:        "cancelled",
	CodeListFailed:       "list-failed",
}

// CodeName returns the short name of a code. Any negative code is a
// success.
func CodeName(code int) string {
	if code < 0 {
		return codeNames[CodeSuccess]
	}
	if name, ok := codeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("critical(%d)", code)
}

// criticalCode maps a listing failure onto a critical code.
func criticalCode(f smbclient.Failure) int {
	switch f {
	case smbclient.FailureUnreachable:
		return CodeUnreachable
	case smbclient.FailureAccessDenied:
		return CodeAccessDenied
	case smbclient.FailureProtocol:
		return CodeProtocol
	case smbclient.FailureCancelled:
		return CodeCancelled
	default:
		return CodeListFailed
	}
}

// HostResult is the aggregate outcome of browsing a target or a subtree.
//
// Succeeds+Fails is the number of entries visited at or below the browsed
// locator. Message is always set when Code >= 0.
type HostResult struct {
	Code     int    `json:"code"`
	Message  string `json:"message,omitempty"`
	Succeeds int    `json:"succeeds"`
	Fails    int    `json:"fails"`

	// Filled by Browser.Target only.
	RunID    string        `json:"run_id,omitempty"`
	Host     string        `json:"host,omitempty"`
	User     string        `json:"user,omitempty"`
	Locator  string        `json:"locator,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// IsSuccess reports whether the walk finished without any failure.
func (r HostResult) IsSuccess() bool { return r.Code < 0 }

// IsPartial reports whether the walk finished with some entry failures.
func (r HostResult) IsPartial() bool { return r.Code == CodePartial }

// IsCritical reports whether the walk was aborted.
func (r HostResult) IsCritical() bool { return r.Code > 0 }

// Outcome is the code name, used as a metrics label and in reports.
func (r HostResult) Outcome() string { return CodeName(r.Code) }

// Visited returns the number of entries the walk visited.
func (r HostResult) Visited() int { return r.Succeeds + r.Fails }

// ObjectResult describes one visited entry. It is handed to the Observer and
// not retained by the engine.
type ObjectResult struct {
	User   string              `json:"user"`
	Host   string              `json:"host"`
	Share  string              `json:"share"`
	Object string              `json:"object,omitempty"`
	Type   smbclient.EntryType `json:"type"`
	ACL    uint32              `json:"acl"`
	Hidden bool                `json:"hidden"`

	Category    classify.Category `json:"category"`
	Permissions string            `json:"permissions"`
	Depth       int               `json:"depth"`
	Err         error             `json:"-"`
}

// OK reports whether the entry could be stat'ed.
func (o ObjectResult) OK() bool { return o.Err == nil }

// Path renders the object as \\host\share\object.
func (o ObjectResult) Path() string {
	p := `\\` + o.Host + `\` + o.Share
	if o.Object != "" {
		p += `\` + strings.ReplaceAll(o.Object, "/", `\`)
	}
	return p
}
