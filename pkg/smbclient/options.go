package smbclient

import (
	"time"

	"github.com/marmos91/smbenum/pkg/auth"
)

// DefaultPort is the SMB direct-hosting TCP port.
const DefaultPort = 445

// Options configures the handles a Manager creates.
type Options struct {
	// Port is used when the locator does not carry one.
	Port int

	// DialTimeout bounds the TCP connect. Zero means no timeout beyond the
	// context's own deadline.
	DialTimeout time.Duration

	// RequireSigning refuses sessions the server will not sign.
	RequireSigning bool

	// RateLimit caps List and Stat calls per second on one handle.
	// Zero disables limiting.
	RateLimit float64

	// Burst is the limiter bucket size. Values below 1 are treated as 1.
	Burst int

	// DebugLevel is the protocol debug verbosity, 0 (quiet) to 3.
	DebugLevel int

	// Limits are the slot capacities handed to the credential provider.
	Limits auth.Limits
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Port:        DefaultPort,
		DialTimeout: 10 * time.Second,
		Burst:       1,
		Limits:      auth.DefaultLimits,
	}
}

func (o Options) port() int {
	if o.Port <= 0 {
		return DefaultPort
	}
	return o.Port
}
