package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidHash is returned when an NT hash is not 16 bytes of hex.
var ErrInvalidHash = errors.New("invalid NT hash")

// NTHashSize is the length of an NT (MD4) password hash.
const NTHashSize = 16

// Limits caps the number of bytes each credential slot accepts.
type Limits struct {
	Workgroup int
	Username  int
	Password  int
}

// DefaultLimits are the slot sizes handed out by the protocol client when it
// is not configured otherwise.
var DefaultLimits = Limits{
	Workgroup: 256,
	Username:  256,
	Password:  256,
}

// WithDefaults returns l with every zero slot replaced by its DefaultLimits
// size. Negative sizes (unbounded) are kept.
func (l Limits) WithDefaults() Limits {
	if l.Workgroup == 0 {
		l.Workgroup = DefaultLimits.Workgroup
	}
	if l.Username == 0 {
		l.Username = DefaultLimits.Username
	}
	if l.Password == 0 {
		l.Password = DefaultLimits.Password
	}
	return l
}

// Request describes one credential challenge raised by the protocol client.
type Request struct {
	Server string
	Share  string
	Limits Limits
}

// Credentials is the workgroup/username/password triple answered to a
// Request. Hash, when set, is used instead of Password.
type Credentials struct {
	Workgroup string
	Username  string
	Password  string
	Hash      []byte
}

// IsAnonymous reports whether the credentials describe a null session.
func (c Credentials) IsAnonymous() bool {
	return c.Username == "" && c.Password == "" && len(c.Hash) == 0
}

// Identity returns "WORKGROUP\user", "user", or "anonymous".
func (c Credentials) Identity() string {
	switch {
	case c.Username == "":
		return "anonymous"
	case c.Workgroup == "":
		return c.Username
	default:
		return c.Workgroup + `\` + c.Username
	}
}

// Clone returns a deep copy so callers may wipe their copy independently.
func (c Credentials) Clone() Credentials {
	out := c
	if c.Hash != nil {
		out.Hash = append([]byte(nil), c.Hash...)
	}
	return out
}

// Wipe zeroes the hash bytes and drops every field.
func (c *Credentials) Wipe() {
	for i := range c.Hash {
		c.Hash[i] = 0
	}
	*c = Credentials{}
}

// Provider answers credential challenges.
type Provider interface {
	// Supply fills the slots described by req. It must not block.
	Supply(req Request) Credentials
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(req Request) Credentials

// Supply implements Provider.
func (f ProviderFunc) Supply(req Request) Credentials {
	return f(req)
}

// Static answers every challenge with the same configured credentials.
type Static struct {
	creds Credentials
}

// NewStatic returns a provider that always supplies creds. The value is
// copied; later changes to the caller's Credentials are not observed.
func NewStatic(creds Credentials) *Static {
	return &Static{creds: creds.Clone()}
}

// Anonymous returns a provider that supplies a null session.
func Anonymous() *Static {
	return &Static{}
}

// Supply implements Provider.
func (s *Static) Supply(req Request) Credentials {
	out := Credentials{
		Workgroup: Truncate(s.creds.Workgroup, req.Limits.Workgroup),
		Username:  Truncate(s.creds.Username, req.Limits.Username),
		Password:  Truncate(s.creds.Password, req.Limits.Password),
	}
	if len(s.creds.Hash) > 0 {
		out.Hash = append([]byte(nil), s.creds.Hash...)
	}
	return out
}

// WithIdentity answers challenges from p but as username, and as workgroup
// when one is given. A non-empty password replaces p's secret, hash
// included; otherwise p's secret is kept.
func WithIdentity(p Provider, workgroup, username, password string) Provider {
	return ProviderFunc(func(req Request) Credentials {
		var creds Credentials
		if p != nil {
			creds = p.Supply(req)
		}
		creds.Username = Truncate(username, req.Limits.Username)
		if workgroup != "" {
			creds.Workgroup = Truncate(workgroup, req.Limits.Workgroup)
		}
		if password == "" {
			return creds
		}
		out := Credentials{
			Workgroup: creds.Workgroup,
			Username:  creds.Username,
			Password:  Truncate(password, req.Limits.Password),
		}
		creds.Wipe()
		return out
	})
}

// Truncate bounds s to limit bytes, backing off to the previous rune
// boundary so the result is valid UTF-8 whenever s is. A negative limit
// means no bound.
func Truncate(s string, limit int) string {
	if limit < 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ParseHash decodes a hex encoded NT hash. An empty string yields nil.
func ParseHash(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if len(b) != NTHashSize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidHash, NTHashSize, len(b))
	}
	return b, nil
}
