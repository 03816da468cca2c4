package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"guideline-agent-be/pkg/events"
	pktNats "guideline-agent-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	eventType string
	durable   string
	handler   pktNats.EventHandler
	err       error
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error {
	s.eventType, s.durable, s.handler = eventType, durableName, handler
	return s.err
}

func TestAnalyticsService_AggregatesMatchedEvents(t *testing.T) {
	sub := &fakeSubscriber{}
	svc := NewAnalyticsService(sub, testLogger)
	require.NoError(t, svc.Start(context.Background()))

	assert.Equal(t, events.TypeGuidelinesMatched, sub.eventType)
	assert.Equal(t, analyticsDurable, sub.durable)
	require.NotNil(t, sub.handler)

	turns := []events.Event{
		events.NewGuidelinesMatchedEvent("s1", "c1", "ventas", "vector", 5, []events.MatchedGuideline{{Id: "g1", Score: 80}, {Id: "g2", Score: 50}}),
		events.NewGuidelinesMatchedEvent("s1", "c1", "ventas", "text", 5, []events.MatchedGuideline{{Id: "g1", Score: 76}}),
		events.NewGuidelinesMatchedEvent("s2", "c2", "", "text", 5, nil),
	}
	for _, evt := range turns {
		require.NoError(t, sub.handler(context.Background(), evt))
	}

	snap := svc.Snapshot()
	assert.True(t, snap.SubscriberActive)
	assert.Equal(t, int64(3), snap.Turns)
	assert.Equal(t, int64(1), snap.EmptyTurns)
	assert.Equal(t, map[string]int64{"ventas": 2, "none": 1}, snap.TurnsByCategory)
	assert.Equal(t, map[string]int64{"vector": 1, "text": 2}, snap.TurnsByMethod)
	assert.Equal(t, map[string]int64{"g1": 2, "g2": 1}, snap.GuidelineCounts)
	require.NotNil(t, snap.LastEventAt)
	assert.WithinDuration(t, time.Now(), *snap.LastEventAt, time.Minute)
}

func TestAnalyticsService_HandlesDecodedEnvelope(t *testing.T) {
	svc := NewAnalyticsService(nil, testLogger)
	original := events.NewGuidelinesMatchedEvent("s", "c", "gestion", "vector", 2, []events.MatchedGuideline{{Id: "g9"}})

	// the bus delivers the envelope form of the event
	decoded := events.Envelope{
		Type:       original.EventType(),
		OccurredAt: original.Timestamp(),
		Data: map[string]interface{}{
			"detected_category": "gestion",
			"matching_method":   "vector",
			"guideline_ids":     []interface{}{"g9"},
		},
	}.Event()
	require.NoError(t, svc.HandleGuidelinesMatched(context.Background(), decoded))

	snap := svc.Snapshot()
	assert.Equal(t, int64(1), snap.GuidelineCounts["g9"])
	assert.Equal(t, int64(1), snap.TurnsByCategory["gestion"])
}

func TestAnalyticsService_StartWithoutSubscriber(t *testing.T) {
	svc := NewAnalyticsService(nil, testLogger)

	require.NoError(t, svc.Start(context.Background()))
	assert.False(t, svc.Snapshot().SubscriberActive)
}

func TestAnalyticsService_StartFailure(t *testing.T) {
	svc := NewAnalyticsService(&fakeSubscriber{err: errors.New("no stream")}, testLogger)

	assert.Error(t, svc.Start(context.Background()))
	assert.False(t, svc.Snapshot().SubscriberActive)
}

func TestAnalyticsService_SnapshotIsACopy(t *testing.T) {
	svc := NewAnalyticsService(nil, testLogger)
	require.NoError(t, svc.HandleGuidelinesMatched(context.Background(),
		events.NewGuidelinesMatchedEvent("s", "c", "ventas", "text", 1, []events.MatchedGuideline{{Id: "g1"}})))

	snap := svc.Snapshot()
	snap.GuidelineCounts["g1"] = 100

	assert.Equal(t, int64(1), svc.Snapshot().GuidelineCounts["g1"])
}
