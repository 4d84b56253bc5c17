package smbclient

import (
	"context"

	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/locator"
)

// EntryType is the raw classification code a Conn attaches to every listed
// entry. The values follow the libsmbclient SMBC_* numbering so reports stay
// comparable with other share auditing tools.
type EntryType uint32

const (
	TypeWorkgroup    EntryType = 1
	TypeServer       EntryType = 2
	TypeFileShare    EntryType = 3
	TypePrinterShare EntryType = 4
	TypeCommsShare   EntryType = 5
	TypeIPCShare     EntryType = 6
	TypeDir          EntryType = 7
	TypeFile         EntryType = 8
	TypeLink         EntryType = 9
)

// Entry is one child returned by Conn.List.
type Entry struct {
	Name string
	Type EntryType
}

// Stat is what Conn.Stat learns about a single entry.
type Stat struct {
	// ACL is the effective access mask the session holds on the entry.
	ACL uint32
	// Attributes are the raw file attributes, zero for shares.
	Attributes uint32
	Size       int64
}

// Conn is one authenticated session to a host. Implementations are not
// required to be safe for concurrent use.
type Conn interface {
	// List returns the children of loc in the order the server delivers
	// them. At server level the children are shares.
	List(ctx context.Context, loc locator.Locator) ([]Entry, error)

	// Stat returns access information for a single entry.
	Stat(ctx context.Context, loc locator.Locator, typ EntryType) (Stat, error)

	// Close tears the session down.
	Close() error
}

// Dialer opens Conns. The provider is the authentication callback the
// protocol client invokes whenever it needs credentials.
type Dialer interface {
	Dial(ctx context.Context, loc locator.Locator, opts Options, provider auth.Provider) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, loc locator.Locator, opts Options, provider auth.Provider) (Conn, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context, loc locator.Locator, opts Options, provider auth.Provider) (Conn, error) {
	return f(ctx, loc, opts, provider)
}
