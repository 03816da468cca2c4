package memory

import (
	"sync"
	"time"

	"guideline-agent-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

const DefaultGuidelineCacheTTL = 5 * time.Minute

type cachedGuidelineSet struct {
	guidelines []*entity.Guideline
	insertedAt time.Time
}

// SessionGuidelineCache keeps one copy of the active guideline catalog per session.
// Expiry is decided against the injected clock, not go-cache's janitor, so TTL
// boundaries are deterministic.
type SessionGuidelineCache struct {
	store *cache.Cache
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex // guards the read-check-delete sequence in Get
}

func NewSessionGuidelineCache(ttl time.Duration) *SessionGuidelineCache {
	return NewSessionGuidelineCacheWithClock(ttl, time.Now)
}

func NewSessionGuidelineCacheWithClock(ttl time.Duration, now func() time.Time) *SessionGuidelineCache {
	if ttl <= 0 {
		ttl = DefaultGuidelineCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SessionGuidelineCache{
		store: cache.New(cache.NoExpiration, 0),
		ttl:   ttl,
		now:   now,
	}
}

func (c *SessionGuidelineCache) expired(set *cachedGuidelineSet, now time.Time) bool {
	return now.Sub(set.insertedAt) > c.ttl
}

// Get returns the cached catalog for the session. An expired entry is removed and reported as absent.
func (c *SessionGuidelineCache) Get(sessionId string) ([]*entity.Guideline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	x, found := c.store.Get(sessionId)
	if !found {
		return nil, false
	}
	set := x.(*cachedGuidelineSet)
	if c.expired(set, c.now()) {
		c.store.Delete(sessionId)
		return nil, false
	}
	return set.guidelines, true
}

func (c *SessionGuidelineCache) Set(sessionId string, guidelines []*entity.Guideline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Set(sessionId, &cachedGuidelineSet{
		guidelines: guidelines,
		insertedAt: c.now(),
	}, cache.NoExpiration)
}

func (c *SessionGuidelineCache) Delete(sessionId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Delete(sessionId)
}

// SweepExpired drops every expired session entry and returns how many were removed.
func (c *SessionGuidelineCache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for sessionId, item := range c.store.Items() {
		set, ok := item.Object.(*cachedGuidelineSet)
		if !ok || c.expired(set, now) {
			c.store.Delete(sessionId)
			removed++
		}
	}
	return removed
}

// Flush clears every session, used after catalog writes.
func (c *SessionGuidelineCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Flush()
}

func (c *SessionGuidelineCache) Len() int {
	return c.store.ItemCount()
}
