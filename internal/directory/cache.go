package directory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/slammedialab/vercel-siteid/internal/platform/metrics"
	"github.com/slammedialab/vercel-siteid/pkg/platform/sentinel"
)

const (
	defaultTTL            = 300 * time.Second
	minTTL                = 30 * time.Second
	defaultFetchTimeout   = 10 * time.Second
	defaultFailureBackoff = 15 * time.Second
	buildKey              = "directory"
)

// SnapshotStore shares built generations between processes. Load returns
// sentinel.ErrNotFound when nothing is stored.
type SnapshotStore interface {
	Load(ctx context.Context) (*Directory, error)
	Save(ctx context.Context, d *Directory, ttl time.Duration) error
}

// Cache is the process-wide directory. Readers always get a complete
// generation; expiry triggers one shared rebuild while the previous
// generation keeps being served. After a failed rebuild no new one starts
// until the failure backoff has passed.
type Cache struct {
	source         Source
	ttl            time.Duration
	fetchTimeout   time.Duration
	failureBackoff time.Duration
	fallback       *Directory
	now            func() time.Time
	snapshots      SnapshotStore
	logger         *slog.Logger
	metrics        *metrics.Metrics

	group   singleflight.Group
	current atomic.Pointer[Directory]

	mu      sync.Mutex
	retryAt time.Time
	lastErr error
}

// Option configures a Cache.
type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithFallback replaces the embedded directory used when there is no source.
func WithFallback(d *Directory) Option {
	return func(c *Cache) {
		if d != nil {
			c.fallback = d
		}
	}
}

func WithSnapshots(store SnapshotStore) Option {
	return func(c *Cache) {
		c.snapshots = store
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithFailureBackoff sets how long reads rely on the previous generation, or
// on the last error when there is none, after a failed build.
func WithFailureBackoff(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.failureBackoff = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// NewCache builds a cache over source. A nil source serves the fallback
// directory and never touches the network. A ttl of zero means the default;
// anything shorter than 30 seconds is raised to 30 seconds.
func NewCache(source Source, ttl time.Duration, opts ...Option) *Cache {
	switch {
	case ttl <= 0:
		ttl = defaultTTL
	case ttl < minTTL:
		ttl = minTTL
	}
	c := &Cache{
		source:         source,
		ttl:            ttl,
		fetchTimeout:   defaultFetchTimeout,
		failureBackoff: defaultFailureBackoff,
		fallback:       Fallback(),
		now:            time.Now,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current generation. A fresh generation is returned without
// I/O. An expired one is returned as well while a single background rebuild
// runs. With nothing cached yet the caller waits for the shared build.
func (c *Cache) Get(ctx context.Context) (*Directory, error) {
	if c.source == nil {
		return c.fallback, nil
	}

	now := c.now()
	current := c.current.Load()
	if current.fresh(now, c.ttl) {
		c.metrics.IncrementDirectoryHit()
		return current, nil
	}
	if err := c.recentFailure(now); err != nil {
		if current != nil {
			return current, nil
		}
		return nil, err
	}
	if current != nil {
		c.group.DoChan(buildKey, c.build)
		return current, nil
	}
	return c.await(ctx)
}

// Refresh forces a rebuild, joining one already in flight. It ignores the
// failure backoff.
func (c *Cache) Refresh(ctx context.Context) (*Directory, error) {
	if c.source == nil {
		return c.fallback, nil
	}
	return c.await(ctx)
}

func (c *Cache) await(ctx context.Context) (*Directory, error) {
	ch := c.group.DoChan(buildKey, c.build)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Directory), nil
	}
}

// build runs under its own deadline so one caller going away does not fail
// the rebuild every other waiter shares.
func (c *Cache) build() (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	if c.current.Load() == nil && c.snapshots != nil {
		snap, err := c.snapshots.Load(ctx)
		switch {
		case err == nil && snap.fresh(c.now(), c.ttl):
			c.install(ctx, snap, "snapshot")
			return snap, nil
		case err != nil && !errors.Is(err, sentinel.ErrNotFound):
			c.logger.WarnContext(ctx, "directory snapshot load failed", "error", err)
		}
	}

	rows, err := c.source.Fetch(ctx)
	if err != nil {
		c.metrics.IncrementDirectoryRefresh("error")
		c.logger.ErrorContext(ctx, "directory refresh failed", "error", err, "retry_in", c.failureBackoff)
		c.noteFailure(err)
		return nil, err
	}

	dir := New(rows, c.now())
	c.install(ctx, dir, "fetched")

	if c.snapshots != nil {
		if err := c.snapshots.Save(ctx, dir, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "directory snapshot save failed", "error", err)
		}
	}
	return dir, nil
}

func (c *Cache) install(ctx context.Context, d *Directory, outcome string) {
	c.current.Store(d)
	c.mu.Lock()
	c.retryAt, c.lastErr = time.Time{}, nil
	c.mu.Unlock()

	c.metrics.IncrementDirectoryRefresh(outcome)
	c.metrics.SetDirectoryEntries(d.Len())
	c.logger.InfoContext(ctx, "directory installed", "entries", d.Len(), "origin", outcome)
}

func (c *Cache) noteFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryAt = c.now().Add(c.failureBackoff)
	c.lastErr = err
}

// recentFailure returns the last build error while it still holds back
// rebuilds, nil otherwise.
func (c *Cache) recentFailure(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !now.Before(c.retryAt) {
		return nil
	}
	return c.lastErr
}
