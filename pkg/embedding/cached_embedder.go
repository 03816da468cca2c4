package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guideline-agent-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

type StoredEmbedding struct {
	Vector []float32
	Model  string
}

// MessageStore persists message embeddings by content hash.
type MessageStore interface {
	// FindByHash returns nil, nil on a miss.
	FindByHash(ctx context.Context, hash string) (*StoredEmbedding, error)
	Save(ctx context.Context, hash, text string, vector []float32, model string) error
}

// CachedEmbedder resolves message embeddings through memory, Redis and the database
// before calling the provider, writing through every tier on a miss.
type CachedEmbedder struct {
	provider EmbeddingProvider
	local    *cache.Cache
	remote   RemoteCache
	store    MessageStore
	ttl      time.Duration
	logger   logger.ILogger
}

type CachedEmbedderOption func(*CachedEmbedder)

func WithRemoteCache(remote RemoteCache) CachedEmbedderOption {
	return func(c *CachedEmbedder) { c.remote = remote }
}

func WithMessageStore(store MessageStore) CachedEmbedderOption {
	return func(c *CachedEmbedder) { c.store = store }
}

func NewCachedEmbedder(provider EmbeddingProvider, ttl time.Duration, log logger.ILogger, opts ...CachedEmbedderOption) *CachedEmbedder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	c := &CachedEmbedder{
		provider: provider,
		local:    cache.New(ttl, 10*time.Minute),
		ttl:      ttl,
		logger:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HashText is the hex SHA-256 of the exact message text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) ModelName() string {
	return c.provider.ModelName()
}

// Embed returns the embedding of a user message, reusing any cached copy of identical text.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := HashText(text)

	if x, found := c.local.Get(hash); found {
		return x.([]float32), nil
	}

	if vec, ok := c.fromRemote(ctx, hash); ok {
		c.local.Set(hash, vec, cache.DefaultExpiration)
		return vec, nil
	}

	if c.store != nil {
		stored, err := c.store.FindByHash(ctx, hash)
		if err != nil {
			c.logger.Warn("embedding.cache", "Message embedding lookup failed", map[string]interface{}{
				"hash":  hash,
				"error": err.Error(),
			})
		} else if stored != nil && len(stored.Vector) > 0 {
			c.local.Set(hash, stored.Vector, cache.DefaultExpiration)
			c.toRemote(ctx, hash, stored.Vector)
			return stored.Vector, nil
		}
	}

	vec, err := c.Generate(ctx, text, TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	c.local.Set(hash, vec, cache.DefaultExpiration)
	c.toRemote(ctx, hash, vec)
	if c.store != nil {
		if err := c.store.Save(ctx, hash, text, vec, c.provider.ModelName()); err != nil {
			c.logger.Warn("embedding.cache", "Failed to store message embedding", map[string]interface{}{
				"hash":  hash,
				"error": err.Error(),
			})
		}
	}

	return vec, nil
}

// Generate calls the provider directly, bypassing every cache tier.
func (c *CachedEmbedder) Generate(ctx context.Context, text, taskType string) ([]float32, error) {
	resp, err := c.provider.Generate(ctx, text, taskType)
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	if resp == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New("generate embedding: empty vector")
	}
	return resp.Embedding.Values, nil
}

func (c *CachedEmbedder) fromRemote(ctx context.Context, hash string) ([]float32, bool) {
	if c.remote == nil {
		return nil, false
	}
	raw, err := c.remote.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("embedding.cache", "Remote embedding cache read failed", map[string]interface{}{
				"hash":  hash,
				"error": err.Error(),
			})
		}
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) == 0 {
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) toRemote(ctx context.Context, hash string, vec []float32) {
	if c.remote == nil {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.remote.Set(ctx, hash, raw, c.ttl); err != nil {
		c.logger.Warn("embedding.cache", "Remote embedding cache write failed", map[string]interface{}{
			"hash":  hash,
			"error": err.Error(),
		})
	}
}
