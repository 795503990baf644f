// Package loopback provides LoopbackCache implementations: fingerprints of
// changes an instance published and whose echo it has not yet received.
package loopback

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"cardsync/internal/platform/telemetry"
)

const (
	shardCount = 32

	// DefaultTTL bounds how long an unanswered fingerprint is kept.
	DefaultTTL = 5 * time.Minute
)

type entry struct {
	pending   int
	expiresAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]entry
}

// MemoryCache is a process-local, sharded fingerprint store with expiry.
//
// Each fingerprint carries a pending count so two identical changes published
// back to back both have their echo suppressed.
type MemoryCache struct {
	shards  [shardCount]*shard
	ttl     time.Duration
	now     func() time.Time
	metrics *telemetry.Loopback
	logger  *slog.Logger
}

type MemoryOption func(*MemoryCache)

func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithMetrics(metrics *telemetry.Loopback) MemoryOption {
	return func(c *MemoryCache) {
		c.metrics = metrics
	}
}

func WithLogger(logger *slog.Logger) MemoryOption {
	return func(c *MemoryCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]entry)}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Remember(_ context.Context, fingerprint string) error {
	s := c.shardFor(fingerprint)
	now := c.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[fingerprint]
	if !ok || !now.Before(e.expiresAt) {
		e = entry{}
	}
	e.pending++
	e.expiresAt = now.Add(c.ttl)
	s.entries[fingerprint] = e
	return nil
}

func (c *MemoryCache) Claim(_ context.Context, fingerprint string) (bool, error) {
	return c.release(fingerprint), nil
}

func (c *MemoryCache) Forget(_ context.Context, fingerprint string) error {
	c.release(fingerprint)
	return nil
}

func (c *MemoryCache) Contains(_ context.Context, fingerprint string) (bool, error) {
	s := c.shardFor(fingerprint)
	now := c.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[fingerprint]
	return ok && now.Before(e.expiresAt), nil
}

// Len reports the number of live fingerprints, expired ones included until swept.
func (c *MemoryCache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Sweep evicts fingerprints whose echo did not arrive within the TTL.
func (c *MemoryCache) Sweep(ctx context.Context) int {
	now := c.now()
	evicted := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for fingerprint, e := range s.entries {
			if !now.Before(e.expiresAt) {
				delete(s.entries, fingerprint)
				evicted++
			}
		}
		s.mu.Unlock()
	}
	c.metrics.Evicted(ctx, evicted)
	return evicted
}

// Run sweeps on every interval tick until ctx is done.
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if evicted := c.Sweep(ctx); evicted > 0 {
				c.logger.Warn("stale loopback fingerprints evicted",
					"event", "loopback_sweep_evicted",
					"module", "internal/platform/loopback",
					"layer", "platform",
					"evicted", evicted,
				)
			}
		}
	}
}

// release removes one pending occurrence and reports whether one was live.
func (c *MemoryCache) release(fingerprint string) bool {
	s := c.shardFor(fingerprint)
	now := c.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[fingerprint]
	if !ok {
		return false
	}
	if !now.Before(e.expiresAt) {
		delete(s.entries, fingerprint)
		return false
	}
	e.pending--
	if e.pending <= 0 {
		delete(s.entries, fingerprint)
	} else {
		s.entries[fingerprint] = e
	}
	return true
}

func (c *MemoryCache) shardFor(fingerprint string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fingerprint))
	return c.shards[h.Sum32()%shardCount]
}
