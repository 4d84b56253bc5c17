package smbclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/smbenum/internal/smb/types"
)

func TestClassify(t *testing.T) {
	status := func(s uint32) error { return &StatusError{Op: "list", Path: "x", Status: s} }

	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{"Nil", nil, FailureNone},
		{"Canceled", context.Canceled, FailureCancelled},
		{"DeadlineWrapped", fmt.Errorf("list: %w", context.DeadlineExceeded), FailureCancelled},
		{"StatusCancelled", status(types.StatusCancelled), FailureCancelled},
		{"AccessDenied", status(types.StatusAccessDenied), FailureAccessDenied},
		{"LogonFailure", status(types.StatusLogonFailure), FailureAccessDenied},
		{"AccountLockedOut", status(types.StatusAccountLockedOut), FailureAccessDenied},
		{"NotFound", status(types.StatusObjectNameNotFound), FailureNotFound},
		{"BadNetworkName", status(types.StatusBadNetworkName), FailureNotFound},
		{"SessionExpired", status(types.StatusNetworkSessionExpired), FailureUnreachable},
		{"NotSupported", status(types.StatusNotSupported), FailureProtocol},
		{"WrappedStatus", fmt.Errorf("walk: %w", status(types.StatusAccessDenied)), FailureAccessDenied},
		{"EOF", io.EOF, FailureUnreachable},
		{"Refused", fmt.Errorf("connect: %w", syscall.ECONNREFUSED), FailureUnreachable},
		{"NetOpError", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("timeout")}, FailureUnreachable},
		{"DNS", &net.DNSError{Err: "no such host", Name: "nope"}, FailureUnreachable},
		{"Released", ErrHandleReleased, FailureOther},
		{"Other", errors.New("weird"), FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{Op: "list", Path: "public/docs", Status: types.StatusAccessDenied}
	assert.Equal(t, "list public/docs: STATUS_ACCESS_DENIED", err.Error())

	err = &StatusError{Op: "session setup", Status: types.StatusLogonFailure}
	assert.Equal(t, "session setup: STATUS_LOGON_FAILURE", err.Error())

	var se *StatusError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &se))
	assert.Equal(t, types.StatusLogonFailure, se.Status)
}
