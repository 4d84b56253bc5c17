package smbclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/locator"
	"github.com/marmos91/smbenum/pkg/metrics"
)

// Manager creates and releases connection handles. One Manager can serve
// many runs; every Handle it returns belongs to exactly one run.
type Manager struct {
	dialer   Dialer
	provider auth.Provider
	opts     Options
	metrics  metrics.BrowseMetrics
}

// NewManager returns a Manager. A nil provider authenticates anonymously;
// m may be nil to disable metrics.
func NewManager(dialer Dialer, provider auth.Provider, opts Options, m metrics.BrowseMetrics) *Manager {
	if provider == nil {
		provider = auth.Anonymous()
	}
	opts.Limits = opts.Limits.WithDefaults()
	return &Manager{
		dialer:   dialer,
		provider: provider,
		opts:     opts,
		metrics:  m,
	}
}

// Options returns the options handles are created with.
func (m *Manager) Options() Options {
	return m.opts
}

// Create opens a handle for loc's host. The provider is registered as the
// authentication callback through a per-handle credential cache that
// Destroy wipes. A user named in loc overrides the provider's identity.
//
// Failures wrap ErrConnectionInit.
func (m *Manager) Create(ctx context.Context, loc locator.Locator) (*Handle, error) {
	if loc.Host == "" {
		return nil, fmt.Errorf("%w: locator has no host", ErrConnectionInit)
	}
	if m.dialer == nil {
		return nil, fmt.Errorf("%w: no dialer configured", ErrConnectionInit)
	}
	if m.opts.Port < 0 || m.opts.Port > 65535 {
		return nil, fmt.Errorf("%w: invalid port %d", ErrConnectionInit, m.opts.Port)
	}

	provider := m.provider
	if loc.User != "" {
		provider = auth.WithIdentity(provider, loc.Workgroup, loc.User, loc.Password)
	}
	creds := newCredentialCache(provider)

	conn, err := m.dialer.Dial(ctx, loc, m.opts, creds)
	if err != nil {
		creds.wipe()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionInit, loc.Host, err)
	}

	h := &Handle{
		host:    loc.Host,
		conn:    conn,
		creds:   creds,
		limiter: newLimiter(m.opts),
		metrics: m.metrics,
		debug:   m.opts.DebugLevel,
	}
	h.user = creds.Supply(auth.Request{Server: loc.Host, Share: loc.Share, Limits: m.opts.Limits}).Identity()

	metrics.HandleOpened(m.metrics)
	logger.DebugCtx(ctx, "Handle created", logger.Host(loc.Host), logger.User(h.user),
		"port", m.opts.port(), "signing", m.opts.RequireSigning)

	return h, nil
}

// Destroy closes h's connection, wipes its credential cache and marks it
// released. Calling it again on the same handle only logs a warning.
func (m *Manager) Destroy(h *Handle) {
	if h == nil {
		return
	}

	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		logger.Warn("Handle already released", logger.Host(h.host))
		return
	}
	h.released = true
	h.mu.Unlock()

	if err := h.conn.Close(); err != nil {
		logger.Debug("Error closing connection", logger.Host(h.host), logger.Err(err))
	}
	h.creds.wipe()

	metrics.HandleClosed(m.metrics)
	logger.Debug("Handle released", logger.Host(h.host))
}

// Handle is one host connection plus the state that belongs to it. It is not
// safe for concurrent use: each run owns its own.
type Handle struct {
	host    string
	user    string
	conn    Conn
	creds   *credentialCache
	limiter *rate.Limiter
	metrics metrics.BrowseMetrics
	debug   int

	mu       sync.Mutex
	released bool
}

// Host returns the host the handle is connected to.
func (h *Handle) Host() string { return h.host }

// User returns the identity the handle authenticates as.
func (h *Handle) User() string { return h.user }

// Released reports whether Destroy has been called.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// List returns the children of loc in delivery order.
func (h *Handle) List(ctx context.Context, loc locator.Locator) ([]Entry, error) {
	if err := h.ready(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	entries, err := h.conn.List(ctx, loc)
	elapsed := time.Since(start)

	metrics.ObserveList(h.metrics, loc.Level().String(), elapsed, string(Classify(err)))
	if h.debug >= 2 {
		logger.DebugCtx(ctx, "List", logger.Path(loc.String()), logger.Entries(len(entries)),
			logger.DurationMs(elapsed), logger.Err(err))
	}
	return entries, err
}

// Stat returns the access information of the entry at loc.
func (h *Handle) Stat(ctx context.Context, loc locator.Locator, typ EntryType) (Stat, error) {
	if err := h.ready(ctx); err != nil {
		return Stat{}, err
	}

	st, err := h.conn.Stat(ctx, loc, typ)
	if h.debug >= 3 {
		logger.DebugCtx(ctx, "Stat", logger.Path(loc.String()), logger.ACL(st.ACL), logger.Err(err))
	}
	return st, err
}

func (h *Handle) ready(ctx context.Context) error {
	if h.Released() {
		return ErrHandleReleased
	}
	if h.limiter == nil {
		return ctx.Err()
	}
	if err := h.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Wait refuses up front when the next token is due after the
		// deadline, without wrapping the context error.
		if _, ok := ctx.Deadline(); ok {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}

func newLimiter(opts Options) *rate.Limiter {
	if opts.RateLimit <= 0 {
		return nil
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
}

// credentialCache answers credential requests from the protocol client,
// asking the underlying provider once per server, share and slot sizes.
type credentialCache struct {
	provider auth.Provider

	mu      sync.Mutex
	entries map[cacheKey]auth.Credentials
}

// cacheKey carries the limits so that a request with smaller slots never
// gets an answer truncated for larger ones, or the reverse.
type cacheKey struct {
	server string
	share  string
	limits auth.Limits
}

func newCredentialCache(p auth.Provider) *credentialCache {
	return &credentialCache{
		provider: p,
		entries:  make(map[cacheKey]auth.Credentials),
	}
}

// Supply implements auth.Provider.
func (c *credentialCache) Supply(req auth.Request) auth.Credentials {
	key := cacheKey{server: req.Server, share: req.Share, limits: req.Limits}

	c.mu.Lock()
	defer c.mu.Unlock()

	if creds, ok := c.entries[key]; ok {
		return creds.Clone()
	}
	creds := c.provider.Supply(req)
	c.entries[key] = creds.Clone()
	return creds
}

func (c *credentialCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// wipe zeroes every cached hash and empties the cache.
func (c *credentialCache) wipe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, creds := range c.entries {
		creds.Wipe()
		delete(c.entries, key)
	}
}
