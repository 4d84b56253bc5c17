package smbclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/hirochachacha/go-smb2"

	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/internal/smb/types"
	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/locator"
)

// ipcShare is the inter-process communication share every server exposes.
const ipcShare = "IPC$"

// Access masks inferred for objects go-smb2 cannot query rights for.
const (
	shareAccess = types.FileReadData | types.FileExecute | types.FileReadAttributes |
		types.ReadControl | types.Synchronize

	writeAccess = types.FileWriteData | types.FileAppendData | types.FileWriteEA |
		types.FileWriteAttributes | types.Delete
)

// SMB2Dialer dials real servers with github.com/hirochachacha/go-smb2.
//
// The TCP connection and session setup are deferred to the first List or
// Stat, so an unreachable host or a refused logon surfaces as a listing
// failure rather than as a handle initialization failure.
type SMB2Dialer struct{}

// NewSMB2Dialer returns the production Dialer.
func NewSMB2Dialer() *SMB2Dialer {
	return &SMB2Dialer{}
}

// Dial implements Dialer.
func (d *SMB2Dialer) Dial(_ context.Context, loc locator.Locator, opts Options, provider auth.Provider) (Conn, error) {
	if provider == nil {
		return nil, errors.New("no credential provider")
	}
	if scheme := strings.ToLower(loc.Scheme); scheme != "" && scheme != "smb" && scheme != "cifs" {
		return nil, fmt.Errorf("unsupported scheme %q", loc.Scheme)
	}
	return &smb2Conn{
		host:     loc.Host,
		addr:     loc.Address(opts.port()),
		opts:     opts,
		provider: provider,
		shares:   make(map[string]*smb2.Share),
	}, nil
}

type smb2Conn struct {
	host     string
	addr     string
	opts     Options
	provider auth.Provider

	tcp     net.Conn
	session *smb2.Session
	shares  map[string]*smb2.Share
}

func (c *smb2Conn) connect(ctx context.Context) error {
	if c.session != nil {
		return nil
	}

	nd := net.Dialer{Timeout: c.opts.DialTimeout}
	tcp, err := nd.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}

	creds := c.provider.Supply(auth.Request{Server: c.host, Share: ipcShare, Limits: c.opts.Limits})
	defer creds.Wipe()

	d := &smb2.Dialer{
		Negotiator: smb2.Negotiator{
			RequireMessageSigning: c.opts.RequireSigning,
		},
		Initiator: &smb2.NTLMInitiator{
			User:     creds.Username,
			Password: creds.Password,
			Domain:   creds.Workgroup,
			Hash:     creds.Hash,
		},
	}

	session, err := d.DialContext(ctx, tcp)
	if err != nil {
		_ = tcp.Close()
		return c.wrap(ctx, "session setup", "", err)
	}

	c.tcp = tcp
	c.session = session
	logger.Debug("SMB session established", logger.Host(c.host), logger.User(creds.Identity()))
	return nil
}

func (c *smb2Conn) mount(ctx context.Context, name string) (*smb2.Share, error) {
	if fs, ok := c.shares[name]; ok {
		return fs.WithContext(ctx), nil
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	fs, err := c.session.WithContext(ctx).Mount(name)
	if err != nil {
		return nil, c.wrap(ctx, "tree connect", name, err)
	}
	c.shares[name] = fs
	return fs.WithContext(ctx), nil
}

// List implements Conn.
func (c *smb2Conn) List(ctx context.Context, loc locator.Locator) ([]Entry, error) {
	if loc.Level() == locator.LevelServer {
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
		names, err := c.session.WithContext(ctx).ListSharenames()
		if err != nil {
			return nil, c.wrap(ctx, "list shares", loc.Host, err)
		}
		entries := make([]Entry, 0, len(names))
		for _, name := range names {
			entries = append(entries, Entry{Name: name, Type: shareType(name)})
		}
		return entries, nil
	}

	fs, err := c.mount(ctx, loc.Share)
	if err != nil {
		return nil, err
	}

	infos, err := fs.ReadDir(smbPath(loc.Object))
	if err != nil {
		return nil, c.wrap(ctx, "list", loc.Share+"/"+loc.Object, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == "." || fi.Name() == ".." {
			continue
		}
		entries = append(entries, Entry{Name: fi.Name(), Type: objectType(attributes(fi))})
	}
	return entries, nil
}

// Stat implements Conn.
func (c *smb2Conn) Stat(ctx context.Context, loc locator.Locator, typ EntryType) (Stat, error) {
	switch loc.Level() {
	case locator.LevelServer:
		if err := c.connect(ctx); err != nil {
			return Stat{}, err
		}
		return Stat{ACL: shareAccess}, nil

	case locator.LevelShare:
		if _, err := c.mount(ctx, loc.Share); err != nil {
			return Stat{}, err
		}
		return Stat{ACL: shareAccess}, nil
	}

	fs, err := c.mount(ctx, loc.Share)
	if err != nil {
		return Stat{}, err
	}

	fi, err := fs.Stat(smbPath(loc.Object))
	if err != nil {
		return Stat{}, c.wrap(ctx, "stat", loc.Share+"/"+loc.Object, err)
	}

	attrs := attributes(fi)
	return Stat{
		ACL:        inferAccess(attrs),
		Attributes: attrs,
		Size:       fi.Size(),
	}, nil
}

// Close implements Conn.
func (c *smb2Conn) Close() error {
	var errs []error
	for name, fs := range c.shares {
		if err := fs.Umount(); err != nil {
			errs = append(errs, fmt.Errorf("umount %s: %w", name, err))
		}
		delete(c.shares, name)
	}
	if c.session != nil {
		if err := c.session.Logoff(); err != nil {
			errs = append(errs, fmt.Errorf("logoff: %w", err))
		}
		c.session = nil
	}
	if c.tcp != nil {
		if err := c.tcp.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
		c.tcp = nil
	}
	return errors.Join(errs...)
}

// wrap converts go-smb2 errors into StatusError so Classify can see the NT
// status. A cancelled context always wins.
func (c *smb2Conn) wrap(ctx context.Context, op, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	var re *smb2.ResponseError
	if errors.As(err, &re) {
		return &StatusError{Op: op, Path: path, Status: re.Code}
	}
	if path != "" {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func shareType(name string) EntryType {
	if strings.EqualFold(name, ipcShare) {
		return TypeIPCShare
	}
	return TypeFileShare
}

func objectType(attrs uint32) EntryType {
	switch {
	case attrs&types.FileAttributeReparsePoint != 0:
		return TypeLink
	case attrs&types.FileAttributeDirectory != 0:
		return TypeDir
	default:
		return TypeFile
	}
}

func attributes(fi os.FileInfo) uint32 {
	if st, ok := fi.(*smb2.FileStat); ok {
		return st.FileAttributes
	}
	var attrs uint32
	if fi.IsDir() {
		attrs |= types.FileAttributeDirectory
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		attrs |= types.FileAttributeReparsePoint
	}
	if fi.Mode().Perm()&0o200 == 0 {
		attrs |= types.FileAttributeReadonly
	}
	return attrs
}

// inferAccess derives the rights a session most likely holds from the
// attributes alone: everything readable, write bits unless read-only.
func inferAccess(attrs uint32) uint32 {
	mask := types.AccessReadOnly
	if attrs&types.FileAttributeReadonly == 0 {
		mask |= writeAccess
		if attrs&types.FileAttributeDirectory != 0 {
			mask |= types.FileDeleteChild
		}
	}
	return mask
}

// smbPath converts a locator object path to the form go-smb2 expects.
func smbPath(object string) string {
	return strings.ReplaceAll(object, "/", `\`)
}
