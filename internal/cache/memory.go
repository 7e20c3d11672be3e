package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryCache is a process-local ParticipantCache.
type MemoryCache struct {
	mu        sync.RWMutex
	clock     clockwork.Clock
	ttl       time.Duration
	items     []ParticipantSummary
	expiresAt time.Time
}

func NewMemoryCache(clock clockwork.Clock, ttl time.Duration) *MemoryCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{clock: clock, ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context) ([]ParticipantSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.items == nil || !c.clock.Now().Before(c.expiresAt) {
		return nil, false
	}
	out := make([]ParticipantSummary, len(c.items))
	copy(out, c.items)
	return out, true
}

func (c *MemoryCache) Set(_ context.Context, participants []ParticipantSummary) error {
	items := make([]ParticipantSummary, len(participants))
	copy(items, participants)

	c.mu.Lock()
	c.items = items
	c.expiresAt = c.clock.Now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.items = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
	return nil
}
