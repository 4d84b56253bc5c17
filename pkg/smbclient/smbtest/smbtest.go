// Package smbtest provides an in-memory share tree implementing the
// smbclient Dialer and Conn contracts, with failure injection and call
// recording for tests.
package smbtest

import (
	"context"
	"strings"
	"sync"

	"github.com/marmos91/smbenum/internal/smb/types"
	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/locator"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

// Node is one entry of the fixture tree.
type Node struct {
	Name     string
	Type     smbclient.EntryType
	ACL      uint32
	Children []*Node

	// ListErr is returned when the node itself is listed.
	ListErr error
	// StatErr is returned when the node is stat'ed.
	StatErr error
}

// Share returns a file share node.
func Share(name string, children ...*Node) *Node {
	return &Node{Name: name, Type: smbclient.TypeFileShare, ACL: types.AccessReadOnly, Children: children}
}

// IPC returns an IPC share node.
func IPC(name string) *Node {
	return &Node{Name: name, Type: smbclient.TypeIPCShare, ACL: types.AccessReadOnly}
}

// Dir returns a directory node.
func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Type: smbclient.TypeDir, ACL: types.AccessReadWrite, Children: children}
}

// File returns a file node.
func File(name string) *Node {
	return &Node{Name: name, Type: smbclient.TypeFile, ACL: types.AccessReadWrite}
}

// Raw returns a node with an arbitrary type code.
func Raw(name string, typ smbclient.EntryType) *Node {
	return &Node{Name: name, Type: typ}
}

// WithACL sets the node's access mask.
func (n *Node) WithACL(mask uint32) *Node {
	n.ACL = mask
	return n
}

// FailStat makes Stat of the node return err.
func (n *Node) FailStat(err error) *Node {
	n.StatErr = err
	return n
}

// FailList makes List of the node return err.
func (n *Node) FailList(err error) *Node {
	n.ListErr = err
	return n
}

// Denied is an access denied status error.
func Denied(op, path string) error {
	return &smbclient.StatusError{Op: op, Path: path, Status: types.StatusAccessDenied}
}

// Server is a fake host. Its zero value is not usable; call NewServer.
type Server struct {
	Host string

	// ListErr fails the server-level share listing.
	ListErr error
	// DialErr fails Dial.
	DialErr error

	root *Node

	mu       sync.Mutex
	lists    []string
	stats    []string
	dials    int
	closes   int
	identity []string
}

// NewServer returns a server exposing shares.
func NewServer(host string, shares ...*Node) *Server {
	return &Server{
		Host: host,
		root: &Node{Name: host, Type: smbclient.TypeServer, Children: shares},
	}
}

// Dialer returns a Dialer connecting to s whatever host the locator names.
func (s *Server) Dialer() smbclient.Dialer {
	return smbclient.DialerFunc(s.dial)
}

func (s *Server) dial(_ context.Context, loc locator.Locator, opts smbclient.Options, provider auth.Provider) (smbclient.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dials++
	if s.DialErr != nil {
		return nil, s.DialErr
	}
	creds := provider.Supply(auth.Request{Server: loc.Host, Share: "IPC$", Limits: opts.Limits})
	s.identity = append(s.identity, creds.Identity())
	return &conn{server: s}, nil
}

// ListCalls returns the locators listed so far, in call order.
func (s *Server) ListCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lists...)
}

// StatCalls returns the locators stat'ed so far, in call order.
func (s *Server) StatCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stats...)
}

// Dials returns how many connections were opened.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// Closes returns how many connections were closed.
func (s *Server) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Identities returns the identity each dial authenticated as.
func (s *Server) Identities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.identity...)
}

// Count returns the number of nodes below the server reachable within
// maxDepth levels of descent, which is what a clean walk visits.
func (s *Server) Count(maxDepth int) int {
	return count(s.root, 0, maxDepth)
}

func count(n *Node, depth, maxDepth int) int {
	total := 0
	for _, c := range n.Children {
		total++
		if depth < maxDepth && isContainer(c.Type) {
			total += count(c, depth+1, maxDepth)
		}
	}
	return total
}

func isContainer(t smbclient.EntryType) bool {
	switch t {
	case smbclient.TypeWorkgroup, smbclient.TypeServer, smbclient.TypeFileShare, smbclient.TypeDir:
		return true
	}
	return false
}

func (s *Server) find(loc locator.Locator) *Node {
	n := s.root
	if loc.Share == "" {
		return n
	}
	parts := append([]string{loc.Share}, splitObject(loc.Object)...)
	for _, p := range parts {
		var next *Node
		for _, c := range n.Children {
			if c.Name == p {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		n = next
	}
	return n
}

func splitObject(object string) []string {
	if object == "" {
		return nil
	}
	return strings.Split(object, "/")
}

type conn struct {
	server *Server
}

func (c *conn) List(ctx context.Context, loc locator.Locator) ([]smbclient.Entry, error) {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = append(s.lists, loc.String())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loc.Level() == locator.LevelServer && s.ListErr != nil {
		return nil, s.ListErr
	}

	n := s.find(loc)
	if n == nil {
		return nil, &smbclient.StatusError{Op: "list", Path: loc.String(), Status: types.StatusObjectNameNotFound}
	}
	if n.ListErr != nil {
		return nil, n.ListErr
	}

	entries := make([]smbclient.Entry, 0, len(n.Children))
	for _, child := range n.Children {
		entries = append(entries, smbclient.Entry{Name: child.Name, Type: child.Type})
	}
	return entries, nil
}

func (c *conn) Stat(ctx context.Context, loc locator.Locator, _ smbclient.EntryType) (smbclient.Stat, error) {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = append(s.stats, loc.String())
	if err := ctx.Err(); err != nil {
		return smbclient.Stat{}, err
	}

	n := s.find(loc)
	if n == nil {
		return smbclient.Stat{}, &smbclient.StatusError{Op: "stat", Path: loc.String(), Status: types.StatusObjectNameNotFound}
	}
	if n.StatErr != nil {
		return smbclient.Stat{}, n.StatErr
	}
	return smbclient.Stat{ACL: n.ACL}, nil
}

func (c *conn) Close() error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	// Every call is counted so double releases show up in tests.
	s.closes++
	return nil
}
