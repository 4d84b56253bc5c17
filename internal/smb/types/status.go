// Package types holds the SMB2 constants a share-browsing client needs:
// NT_STATUS codes it can receive, file attribute bits it decodes and the
// access-mask bits it renders.
package types

import "fmt"

// NT_STATUS codes [MS-ERREF] 2.3 that a browsing client can receive.
const (
	StatusSuccess               uint32 = 0x00000000
	StatusNoMoreFiles           uint32 = 0x80000006
	StatusInvalidParameter      uint32 = 0xC000000D
	StatusNoSuchFile            uint32 = 0xC000000F
	StatusAccessDenied          uint32 = 0xC0000022
	StatusObjectNameInvalid     uint32 = 0xC0000033
	StatusObjectNameNotFound    uint32 = 0xC0000034
	StatusObjectPathNotFound    uint32 = 0xC000003A
	StatusSharingViolation      uint32 = 0xC0000043
	StatusDeletePending         uint32 = 0xC0000056
	StatusLogonFailure          uint32 = 0xC000006D
	StatusAccountRestriction    uint32 = 0xC000006E
	StatusPasswordExpired       uint32 = 0xC0000071
	StatusAccountDisabled       uint32 = 0xC0000072
	StatusNotSupported          uint32 = 0xC00000BB
	StatusNetworkNameDeleted    uint32 = 0xC00000C9
	StatusNetworkAccessDenied   uint32 = 0xC00000CA
	StatusBadNetworkName        uint32 = 0xC00000CC
	StatusRequestNotAccepted    uint32 = 0xC00000D0
	StatusNotADirectory         uint32 = 0xC0000103
	StatusCancelled             uint32 = 0xC0000120
	StatusUserSessionDeleted    uint32 = 0xC0000203
	StatusPathNotCovered        uint32 = 0xC0000257
	StatusNetworkSessionExpired uint32 = 0xC000035C
	StatusAccountLockedOut      uint32 = 0xC0000234
)

// StatusName returns a human-readable name for NT_STATUS codes
func StatusName(status uint32) string {
	switch status {
	case StatusSuccess:
		return "STATUS_SUCCESS"
	case StatusNoMoreFiles:
		return "STATUS_NO_MORE_FILES"
	case StatusInvalidParameter:
		return "STATUS_INVALID_PARAMETER"
	case StatusNoSuchFile:
		return "STATUS_NO_SUCH_FILE"
	case StatusAccessDenied:
		return "STATUS_ACCESS_DENIED"
	case StatusObjectNameInvalid:
		return "STATUS_OBJECT_NAME_INVALID"
	case StatusObjectNameNotFound:
		return "STATUS_OBJECT_NAME_NOT_FOUND"
	case StatusObjectPathNotFound:
		return "STATUS_OBJECT_PATH_NOT_FOUND"
	case StatusSharingViolation:
		return "STATUS_SHARING_VIOLATION"
	case StatusDeletePending:
		return "STATUS_DELETE_PENDING"
	case StatusLogonFailure:
		return "STATUS_LOGON_FAILURE"
	case StatusAccountRestriction:
		return "STATUS_ACCOUNT_RESTRICTION"
	case StatusPasswordExpired:
		return "STATUS_PASSWORD_EXPIRED"
	case StatusAccountDisabled:
		return "STATUS_ACCOUNT_DISABLED"
	case StatusNotSupported:
		return "STATUS_NOT_SUPPORTED"
	case StatusNetworkNameDeleted:
		return "STATUS_NETWORK_NAME_DELETED"
	case StatusNetworkAccessDenied:
		return "STATUS_NETWORK_ACCESS_DENIED"
	case StatusBadNetworkName:
		return "STATUS_BAD_NETWORK_NAME"
	case StatusRequestNotAccepted:
		return "STATUS_REQUEST_NOT_ACCEPTED"
	case StatusNotADirectory:
		return "STATUS_NOT_A_DIRECTORY"
	case StatusCancelled:
		return "STATUS_CANCELLED"
	case StatusUserSessionDeleted:
		return "STATUS_USER_SESSION_DELETED"
	case StatusPathNotCovered:
		return "STATUS_PATH_NOT_COVERED"
	case StatusNetworkSessionExpired:
		return "STATUS_NETWORK_SESSION_EXPIRED"
	case StatusAccountLockedOut:
		return "STATUS_ACCOUNT_LOCKED_OUT"
	default:
		return fmt.Sprintf("STATUS_0x%08X", status)
	}
}

// IsError returns true if the status indicates an error
func IsError(status uint32) bool {
	// NT_STATUS error codes have the two high bits set (0xC0000000)
	return (status & 0xC0000000) == 0xC0000000
}

// IsAccessDenied reports whether the status is one of the codes a server
// returns when the caller's identity is refused.
func IsAccessDenied(status uint32) bool {
	switch status {
	case StatusAccessDenied, StatusNetworkAccessDenied, StatusLogonFailure,
		StatusAccountRestriction, StatusPasswordExpired, StatusAccountDisabled,
		StatusAccountLockedOut:
		return true
	}
	return false
}

// IsNotFound reports whether the status means the object is gone.
func IsNotFound(status uint32) bool {
	switch status {
	case StatusNoSuchFile, StatusObjectNameNotFound, StatusObjectPathNotFound,
		StatusBadNetworkName, StatusNetworkNameDeleted, StatusDeletePending:
		return true
	}
	return false
}

// IsSessionLost reports whether the status means the session or tree is no
// longer usable.
func IsSessionLost(status uint32) bool {
	switch status {
	case StatusUserSessionDeleted, StatusNetworkSessionExpired, StatusRequestNotAccepted:
		return true
	}
	return false
}
