package matching

import (
	"math"
	"time"
)

const (
	DefaultMaxGuidelinesPerResponse  = 3
	DefaultFatigueFactor             = 0.95
	DefaultRecentMessagesContext     = 3
	DefaultMatchThreshold            = 30.0
	DefaultHybridWeight              = 0.8
	DefaultVectorSimilarityThreshold = 0.3
	DefaultVectorSearchLimit         = 30
	DefaultExternalCallTimeout       = 10 * time.Second
)

// Config holds the ranking tunables. The session cache TTL lives with the cache itself.
type Config struct {
	MaxGuidelinesPerResponse  int
	FatigueFactor             float64
	RecentMessagesContext     int
	MatchThreshold            float64
	HybridWeight              float64
	VectorSimilarityThreshold float64
	VectorSearchLimit         int
	ExternalCallTimeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxGuidelinesPerResponse:  DefaultMaxGuidelinesPerResponse,
		FatigueFactor:             DefaultFatigueFactor,
		RecentMessagesContext:     DefaultRecentMessagesContext,
		MatchThreshold:            DefaultMatchThreshold,
		HybridWeight:              DefaultHybridWeight,
		VectorSimilarityThreshold: DefaultVectorSimilarityThreshold,
		VectorSearchLimit:         DefaultVectorSearchLimit,
		ExternalCallTimeout:       DefaultExternalCallTimeout,
	}
}

// Normalize replaces out-of-range values with their defaults.
func (c Config) Normalize() Config {
	if c.MaxGuidelinesPerResponse <= 0 {
		c.MaxGuidelinesPerResponse = DefaultMaxGuidelinesPerResponse
	}
	if !(c.FatigueFactor > 0 && c.FatigueFactor < 1) {
		c.FatigueFactor = DefaultFatigueFactor
	}
	if c.RecentMessagesContext <= 0 {
		c.RecentMessagesContext = DefaultRecentMessagesContext
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > MaxScore || math.IsNaN(c.MatchThreshold) {
		c.MatchThreshold = DefaultMatchThreshold
	}
	if math.IsNaN(c.HybridWeight) {
		c.HybridWeight = DefaultHybridWeight
	}
	c.HybridWeight = ClampWeight(c.HybridWeight)
	if c.VectorSimilarityThreshold < 0 || c.VectorSimilarityThreshold > 1 {
		c.VectorSimilarityThreshold = DefaultVectorSimilarityThreshold
	}
	if c.VectorSearchLimit <= 0 {
		c.VectorSearchLimit = DefaultVectorSearchLimit
	}
	if c.ExternalCallTimeout <= 0 {
		c.ExternalCallTimeout = DefaultExternalCallTimeout
	}
	return c
}

// ClampWeight bounds a hybrid weight to [0,1].
func ClampWeight(w float64) float64 {
	return math.Max(0, math.Min(1, w))
}
