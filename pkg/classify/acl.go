package classify

import (
	"fmt"
	"strings"

	"github.com/marmos91/smbenum/internal/smb/types"
)

type aclBit struct {
	mask uint32
	name string
	// dirName replaces name when the object is a directory or share.
	dirName string
}

// aclBits lists every recognized access-mask bit in ascending bit order.
var aclBits = []aclBit{
	{types.FileReadData, "read", "list"},
	{types.FileWriteData, "write", "add-file"},
	{types.FileAppendData, "append", "add-subdir"},
	{types.FileReadEA, "read-ea", ""},
	{types.FileWriteEA, "write-ea", ""},
	{types.FileExecute, "execute", "traverse"},
	{types.FileDeleteChild, "delete-child", ""},
	{types.FileReadAttributes, "read-attrs", ""},
	{types.FileWriteAttributes, "write-attrs", ""},
	{types.Delete, "delete", ""},
	{types.ReadControl, "read-control", ""},
	{types.WriteDac, "write-dac", ""},
	{types.WriteOwner, "write-owner", ""},
	{types.Synchronize, "synchronize", ""},
	{types.AccessSystemSecurity, "system-security", ""},
	{types.MaximumAllowed, "maximum-allowed", ""},
	{types.GenericAll, "generic-all", ""},
	{types.GenericExecute, "generic-execute", ""},
	{types.GenericWrite, "generic-write", ""},
	{types.GenericRead, "generic-read", ""},
}

var knownACLBits = func() uint32 {
	var m uint32
	for _, b := range aclBits {
		m |= b.mask
	}
	return m
}()

// ACLTokens decodes mask into one token per recognized bit, in ascending
// bit order. Bits it does not recognize are reported together as a single
// trailing "unknown(0x...)" token. A zero mask yields nil.
func ACLTokens(mask uint32) []string {
	return decode(mask, false)
}

// DirectoryACLTokens is ACLTokens using the directory names of the bits that
// have one (list, add-file, add-subdir, traverse).
func DirectoryACLTokens(mask uint32) []string {
	return decode(mask, true)
}

func decode(mask uint32, dir bool) []string {
	if mask == 0 {
		return nil
	}
	tokens := make([]string, 0, 8)
	for _, b := range aclBits {
		if mask&b.mask == 0 {
			continue
		}
		if dir && b.dirName != "" {
			tokens = append(tokens, b.dirName)
		} else {
			tokens = append(tokens, b.name)
		}
	}
	if rest := mask &^ knownACLBits; rest != 0 {
		tokens = append(tokens, fmt.Sprintf("unknown(0x%08x)", rest))
	}
	return tokens
}

// ACL renders mask as a '|' separated permission description, or "none".
func ACL(mask uint32) string {
	return join(ACLTokens(mask))
}

// ACLFor renders mask using the vocabulary that fits the category.
func ACLFor(c Category, mask uint32) string {
	if c.IsContainer() {
		return join(DirectoryACLTokens(mask))
	}
	return join(ACLTokens(mask))
}

func join(tokens []string) string {
	if len(tokens) == 0 {
		return "none"
	}
	return strings.Join(tokens, "|")
}

// Access is a coarse summary of an access mask for report columns.
type Access string

const (
	AccessNone  Access = "NO ACCESS"
	AccessRead  Access = "READ"
	AccessWrite Access = "READ, WRITE"
	AccessFull  Access = "FULL"
)

// Summarize collapses mask into an Access level.
func Summarize(mask uint32) Access {
	const write = types.FileWriteData | types.FileAppendData | types.GenericWrite
	const read = types.FileReadData | types.GenericRead
	const owner = types.WriteDac | types.WriteOwner

	switch {
	case mask&types.GenericAll != 0, mask&owner == owner && mask&write != 0:
		return AccessFull
	case mask&write != 0:
		return AccessWrite
	case mask&read != 0:
		return AccessRead
	default:
		return AccessNone
	}
}
