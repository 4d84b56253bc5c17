// Package locator parses target locators of the form
// proto://[[DOMAIN;]USER[:PASSWORD]@]HOST[:PORT][/SHARE[/PATH...]] into their
// identity, host, share and object components.
//
// Parsing never touches the network. Both '/' and '\' are accepted as
// separators after the host, repeated separators collapse, and trailing
// separators are dropped, so "smb://srv//data\\dir/" and "smb://srv/data/dir"
// are the same locator.
package locator

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedLocator is returned when the proto://HOST prefix is missing.
var ErrMalformedLocator = errors.New("malformed locator")

// DefaultScheme is used by String when a Locator has no scheme.
const DefaultScheme = "smb"

// Level says how deep a locator points into a host's namespace.
type Level int

const (
	// LevelServer addresses the host itself (its share list).
	LevelServer Level = iota
	// LevelShare addresses the root of a share.
	LevelShare
	// LevelObject addresses a directory or file inside a share.
	LevelObject
)

func (l Level) String() string {
	switch l {
	case LevelServer:
		return "server"
	case LevelShare:
		return "share"
	case LevelObject:
		return "object"
	default:
		return "unknown"
	}
}

// Locator is a parsed target locator.
type Locator struct {
	Scheme string

	// Workgroup, User and Password come from the optional userinfo prefix.
	// They override the configured credentials for this target only.
	Workgroup string
	User      string
	Password  string

	Host   string
	Port   int // 0 when not given
	Share  string
	Object string // '/'-separated path within the share, empty for the share root
}

// Parse splits s into its components.
//
// Example:
//
//	loc, _ := locator.Parse("smb://host/share/dir/file")
//	// loc.Host == "host", loc.Share == "share", loc.Object == "dir/file"
//
//	loc, _ = locator.Parse("smb://CORP;alice@host/share")
//	// loc.Workgroup == "CORP", loc.User == "alice", loc.Host == "host"
func Parse(s string) (Locator, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(s), "://")
	if !ok || scheme == "" {
		return Locator{}, fmt.Errorf("%w: %q: missing proto:// prefix", ErrMalformedLocator, s)
	}

	parts := split(rest)
	if len(parts) == 0 || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, `\`) {
		return Locator{}, fmt.Errorf("%w: %q: missing host", ErrMalformedLocator, s)
	}

	loc := Locator{Scheme: strings.ToLower(scheme)}

	hostPort := parts[0]
	if i := strings.LastIndexByte(hostPort, '@'); i >= 0 {
		if err := loc.setUserinfo(hostPort[:i]); err != nil {
			return Locator{}, fmt.Errorf("%w: %v", ErrMalformedLocator, err)
		}
		hostPort = hostPort[i+1:]
	}

	host, port, err := splitHostPort(hostPort)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %q: %v", ErrMalformedLocator, s, err)
	}
	loc.Host = host
	loc.Port = port

	if len(parts) > 1 {
		loc.Share = parts[1]
	}
	if len(parts) > 2 {
		loc.Object = strings.Join(parts[2:], "/")
	}
	return loc, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constant locators.
func MustParse(s string) Locator {
	loc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// setUserinfo parses "[DOMAIN;]USER[:PASSWORD]". Each part may be
// percent-encoded. The raw text is kept out of errors since it may hold a
// password.
func (l *Locator) setUserinfo(info string) error {
	domain, rest, ok := strings.Cut(info, ";")
	if !ok {
		domain, rest = "", info
	}
	user, password, _ := strings.Cut(rest, ":")

	var err error
	if l.Workgroup, err = url.PathUnescape(domain); err != nil {
		return errors.New("invalid escape in domain")
	}
	if l.User, err = url.PathUnescape(user); err != nil {
		return errors.New("invalid escape in user")
	}
	if l.Password, err = url.PathUnescape(password); err != nil {
		return errors.New("invalid escape in password")
	}
	if l.User == "" {
		return errors.New("empty user before '@'")
	}
	return nil
}

// split breaks the part after "://" on both separator styles, dropping
// empty segments.
func split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

func splitHostPort(s string) (string, int, error) {
	// Bracketed IPv6 literal, optionally followed by :port.
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", 0, errors.New("unterminated IPv6 literal")
		}
		host := s[1:end]
		rest := s[end+1:]
		if rest == "" {
			return host, 0, nil
		}
		if !strings.HasPrefix(rest, ":") {
			return "", 0, fmt.Errorf("unexpected %q after host", rest)
		}
		port, err := parsePort(rest[1:])
		return host, port, err
	}

	host, portStr, hasPort := strings.Cut(s, ":")
	if host == "" {
		return "", 0, errors.New("missing host")
	}
	if !hasPort {
		return host, 0, nil
	}
	port, err := parsePort(portStr)
	return host, port, err
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

// Level reports which part of the namespace the locator addresses.
func (l Locator) Level() Level {
	switch {
	case l.Share == "":
		return LevelServer
	case l.Object == "":
		return LevelShare
	default:
		return LevelObject
	}
}

// Join returns the locator of a child entry named name. At server level the
// child is a share; below it the child is appended to the object path.
func (l Locator) Join(name string) Locator {
	child := l
	if l.Share == "" {
		child.Share = name
		return child
	}
	if l.Object == "" {
		child.Object = name
		return child
	}
	child.Object = l.Object + "/" + name
	return child
}

// Name returns the last component of the locator: the object's base name,
// the share name, or the host.
func (l Locator) Name() string {
	switch l.Level() {
	case LevelServer:
		return l.Host
	case LevelShare:
		return l.Share
	default:
		if i := strings.LastIndexByte(l.Object, '/'); i >= 0 {
			return l.Object[i+1:]
		}
		return l.Object
	}
}

// Address returns host:port for dialing, using defaultPort when the locator
// carries none.
func (l Locator) Address(defaultPort int) string {
	port := l.Port
	if port == 0 {
		port = defaultPort
	}
	host := l.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return host + ":" + strconv.Itoa(port)
}

// String renders the canonical form of the locator. The password is never
// rendered.
func (l Locator) String() string {
	var b strings.Builder
	scheme := l.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	b.WriteString(scheme)
	b.WriteString("://")
	if l.User != "" {
		if l.Workgroup != "" {
			b.WriteString(url.PathEscape(l.Workgroup) + ";")
		}
		b.WriteString(url.PathEscape(l.User) + "@")
	}
	if strings.Contains(l.Host, ":") {
		b.WriteString("[" + l.Host + "]")
	} else {
		b.WriteString(l.Host)
	}
	if l.Port != 0 {
		b.WriteString(":" + strconv.Itoa(l.Port))
	}
	if l.Share != "" {
		b.WriteString("/" + l.Share)
	}
	if l.Object != "" {
		b.WriteString("/" + l.Object)
	}
	return b.String()
}
