// Package classify turns the raw codes a protocol client hands back into
// human-readable categories and permission descriptions.
package classify

import (
	"fmt"
	"strings"

	"github.com/marmos91/smbenum/pkg/smbclient"
)

// Category is the human-readable class of a discovered object.
type Category string

const (
	CategoryWorkgroup    Category = "workgroup"
	CategoryServer       Category = "server"
	CategoryFileShare    Category = "file-share"
	CategoryPrinterShare Category = "printer-share"
	CategoryCommsShare   Category = "comms-share"
	CategoryIPCShare     Category = "ipc-share"
	CategoryDirectory    Category = "directory"
	CategoryFile         Category = "file"
	CategoryLink         Category = "link"
	CategoryUnknown      Category = "unknown"
)

var categories = map[smbclient.EntryType]Category{
	smbclient.TypeWorkgroup:    CategoryWorkgroup,
	smbclient.TypeServer:       CategoryServer,
	smbclient.TypeFileShare:    CategoryFileShare,
	smbclient.TypePrinterShare: CategoryPrinterShare,
	smbclient.TypeCommsShare:   CategoryCommsShare,
	smbclient.TypeIPCShare:     CategoryIPCShare,
	smbclient.TypeDir:          CategoryDirectory,
	smbclient.TypeFile:         CategoryFile,
	smbclient.TypeLink:         CategoryLink,
}

// Type maps a raw entry code to its category. Unmapped codes yield
// CategoryUnknown.
func Type(code smbclient.EntryType) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryUnknown
}

// IsContainer reports whether objects of this category can be descended
// into.
func (c Category) IsContainer() bool {
	switch c {
	case CategoryWorkgroup, CategoryServer, CategoryFileShare, CategoryDirectory:
		return true
	}
	return false
}

// IsShare reports whether the category is one of the share kinds.
func (c Category) IsShare() bool {
	switch c {
	case CategoryFileShare, CategoryPrinterShare, CategoryCommsShare, CategoryIPCShare:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Hidden reports whether name follows the administrative/hidden naming
// convention: a trailing '$' (ADMIN$, C$, IPC$).
func Hidden(name string) bool {
	return strings.HasSuffix(name, "$")
}

// Label is a short column-friendly rendering of an unknown code.
func Label(code smbclient.EntryType) string {
	c := Type(code)
	if c == CategoryUnknown {
		return fmt.Sprintf("unknown(%d)", code)
	}
	return c.String()
}
