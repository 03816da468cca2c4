package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	e := NewGuidelinesMatchedEvent("s-1", "c-1", "ventas", "vector", 12, []MatchedGuideline{
		{Id: "g-1", Score: 81.5, UsageCount: 1},
		{Id: "g-2", Score: 40},
	})

	raw, err := json.Marshal(ToEnvelope(e))
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	got := env.Event()

	assert.Equal(t, TypeGuidelinesMatched, got.EventType())
	assert.True(t, e.Timestamp().Equal(got.Timestamp()))
	assert.Equal(t, "ventas", got.Payload()["detected_category"])
	assert.Equal(t, "vector", got.Payload()["matching_method"])
	assert.Equal(t, []interface{}{"g-1", "g-2"}, got.Payload()["guideline_ids"])
	assert.Equal(t, float64(12), got.Payload()["candidates"])
}
