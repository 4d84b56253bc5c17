package smbclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/marmos91/smbenum/internal/smb/types"
)

var (
	// ErrConnectionInit is returned by Manager.Create when the handle could
	// not be built. The underlying cause is wrapped.
	ErrConnectionInit = errors.New("smb connection initialization failed")

	// ErrHandleReleased is returned when a handle is used after Destroy.
	ErrHandleReleased = errors.New("smb handle already released")
)

// StatusError is an operation the server answered with a non-success NT
// status.
type StatusError struct {
	Op     string
	Path   string
	Status uint32
}

func (e *StatusError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Op, types.StatusName(e.Status))
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, types.StatusName(e.Status))
}

// Failure is the coarse class of an error returned by a Conn.
type Failure string

const (
	FailureNone         Failure = ""
	FailureUnreachable  Failure = "unreachable"
	FailureAccessDenied Failure = "access-denied"
	FailureProtocol     Failure = "protocol"
	FailureCancelled    Failure = "cancelled"
	FailureNotFound     Failure = "not-found"
	FailureOther        Failure = "other"
)

// Classify maps err onto a Failure. Context errors win over everything else
// so a cancelled run is never reported as a network outage.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureCancelled
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Status == types.StatusCancelled:
			return FailureCancelled
		case types.IsAccessDenied(se.Status):
			return FailureAccessDenied
		case types.IsNotFound(se.Status):
			return FailureNotFound
		case types.IsSessionLost(se.Status):
			return FailureUnreachable
		default:
			return FailureProtocol
		}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return FailureUnreachable
	}

	// Covers *net.OpError and *net.DNSError.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureUnreachable
	}

	return FailureOther
}
