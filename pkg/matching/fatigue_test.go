package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyFatigue(t *testing.T) {
	tests := []struct {
		usage int
		want  float64
	}{
		{0, 80.0},
		{1, 76.0},
		{2, 72.2},
		{-1, 80.0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, ApplyFatigue(80, 0.95, tt.usage), 1e-9, "usage %d", tt.usage)
	}
}

func TestApplyFatigue_StrictlyDecreasing(t *testing.T) {
	prev := ApplyFatigue(50, DefaultFatigueFactor, 0)
	for k := 1; k <= 100; k++ {
		next := ApplyFatigue(50, DefaultFatigueFactor, k)
		assert.Less(t, next, prev, "usage %d", k)
		prev = next
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{
		MaxGuidelinesPerResponse: 0,
		FatigueFactor:            1.5,
		HybridWeight:             2,
		MatchThreshold:           -1,
	}.Normalize()

	assert.Equal(t, DefaultMaxGuidelinesPerResponse, cfg.MaxGuidelinesPerResponse)
	assert.Equal(t, DefaultFatigueFactor, cfg.FatigueFactor)
	assert.Equal(t, 1.0, cfg.HybridWeight)
	assert.Equal(t, DefaultMatchThreshold, cfg.MatchThreshold)
	assert.Equal(t, DefaultRecentMessagesContext, cfg.RecentMessagesContext)
	assert.Equal(t, DefaultExternalCallTimeout, cfg.ExternalCallTimeout)

	assert.Equal(t, DefaultConfig(), DefaultConfig().Normalize())
}
