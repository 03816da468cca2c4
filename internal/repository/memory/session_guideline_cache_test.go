package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"guideline-agent-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func sampleGuidelines() []*entity.Guideline {
	return []*entity.Guideline{
		{Id: uuid.New(), Condition: "hola", Action: "saluda", Active: true},
		{Id: uuid.New(), Condition: "pregunta por precio", Action: "da el precio", Active: true},
	}
}

func TestSessionGuidelineCache_TTLBoundary(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: t0}
	c := NewSessionGuidelineCacheWithClock(300000*time.Millisecond, clock.Now)

	guidelines := sampleGuidelines()
	c.Set("session-1", guidelines)

	clock.Set(t0.Add(299999 * time.Millisecond))
	got, ok := c.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, guidelines, got)

	clock.Set(t0.Add(300001 * time.Millisecond))
	got, ok = c.Get("session-1")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Len(), "expired entry should be removed on read")
}

func TestSessionGuidelineCache_ExactTTLIsStillValid(t *testing.T) {
	t0 := time.Unix(0, 0)
	clock := &fakeClock{now: t0}
	c := NewSessionGuidelineCacheWithClock(time.Minute, clock.Now)
	c.Set("s", sampleGuidelines())

	clock.Set(t0.Add(time.Minute))
	_, ok := c.Get("s")
	assert.True(t, ok)
}

func TestSessionGuidelineCache_KeyedBySession(t *testing.T) {
	c := NewSessionGuidelineCache(time.Minute)
	a := sampleGuidelines()
	b := sampleGuidelines()[:1]

	c.Set("a", a)
	c.Set("b", b)

	gotA, _ := c.Get("a")
	gotB, _ := c.Get("b")
	assert.Len(t, gotA, 2)
	assert.Len(t, gotB, 1)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestSessionGuidelineCache_SetReplacesAndRefreshes(t *testing.T) {
	t0 := time.Unix(1000, 0)
	clock := &fakeClock{now: t0}
	c := NewSessionGuidelineCacheWithClock(time.Minute, clock.Now)

	c.Set("s", sampleGuidelines())
	clock.Set(t0.Add(50 * time.Second))
	replacement := sampleGuidelines()[:1]
	c.Set("s", replacement)

	clock.Set(t0.Add(90 * time.Second))
	got, ok := c.Get("s")
	require.True(t, ok)
	assert.Equal(t, replacement, got)
	assert.Equal(t, 1, c.Len())
}

func TestSessionGuidelineCache_SweepExpired(t *testing.T) {
	t0 := time.Unix(0, 0)
	clock := &fakeClock{now: t0}
	c := NewSessionGuidelineCacheWithClock(time.Minute, clock.Now)

	c.Set("old-1", sampleGuidelines())
	c.Set("old-2", sampleGuidelines())
	clock.Set(t0.Add(45 * time.Second))
	c.Set("fresh", sampleGuidelines())

	clock.Set(t0.Add(61 * time.Second))
	removed := c.SweepExpired()

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestSessionGuidelineCache_ConcurrentAccess(t *testing.T) {
	c := NewSessionGuidelineCache(time.Minute)
	guidelines := sampleGuidelines()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("s-%d", i%5)
			if _, ok := c.Get(session); !ok {
				c.Set(session, guidelines)
			}
			c.SweepExpired()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
	for i := 0; i < 5; i++ {
		got, ok := c.Get(fmt.Sprintf("s-%d", i))
		require.True(t, ok)
		assert.Equal(t, guidelines, got)
	}
}

func TestSessionGuidelineCache_Flush(t *testing.T) {
	c := NewSessionGuidelineCache(time.Minute)
	c.Set("a", sampleGuidelines())
	c.Set("b", sampleGuidelines())
	require.Equal(t, 2, c.Len())

	c.Flush()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSessionGuidelineCache_DeleteRacesWithReaders(t *testing.T) {
	c := NewSessionGuidelineCache(time.Minute)
	guidelines := sampleGuidelines()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("session-%d", i%2)
			for j := 0; j < 100; j++ {
				c.Set(key, guidelines)
				c.Get(key)
				c.Delete(key)
			}
		}(i)
	}
	wg.Wait()

	c.Set("session-0", guidelines)
	c.Delete("session-0")
	_, ok := c.Get("session-0")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
