package service

import (
	"context"
	"sync"
	"time"

	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/pkg/events"
	pktNats "guideline-agent-be/pkg/nats"
)

const (
	analyticsDurable = "guideline-analytics"
	noCategory       = "none"
)

type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// IAnalyticsService aggregates GUIDELINES_MATCHED events in memory.
type IAnalyticsService interface {
	Start(ctx context.Context) error
	HandleGuidelinesMatched(ctx context.Context, event events.Event) error
	Snapshot() *dto.AnalyticsSnapshotResponse
}

type analyticsService struct {
	subscriber EventSubscriber // nil when NATS is unavailable
	logger     logger.ILogger

	mu         sync.Mutex
	active     bool
	turns      int64
	emptyTurns int64
	categories map[string]int64
	methods    map[string]int64
	guidelines map[string]int64
	lastEvent  *time.Time
}

func NewAnalyticsService(subscriber EventSubscriber, log logger.ILogger) IAnalyticsService {
	return &analyticsService{
		subscriber: subscriber,
		logger:     log,
		categories: make(map[string]int64),
		methods:    make(map[string]int64),
		guidelines: make(map[string]int64),
	}
}

func (s *analyticsService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Warn("ANALYTICS", "No event subscriber configured, analytics disabled", nil)
		return nil
	}
	if err := s.subscriber.Subscribe(ctx, events.TypeGuidelinesMatched, analyticsDurable, s.HandleGuidelinesMatched); err != nil {
		return err
	}

	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	return nil
}

func (s *analyticsService) HandleGuidelinesMatched(_ context.Context, event events.Event) error {
	data := event.Payload()

	category, _ := data["detected_category"].(string)
	if category == "" {
		category = noCategory
	}
	method, _ := data["matching_method"].(string)
	ids, _ := data["guideline_ids"].([]interface{})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns++
	s.categories[category]++
	if method != "" {
		s.methods[method]++
	}
	if len(ids) == 0 {
		s.emptyTurns++
	}
	for _, raw := range ids {
		if id, ok := raw.(string); ok {
			s.guidelines[id]++
		}
	}
	ts := event.Timestamp()
	s.lastEvent = &ts
	return nil
}

func (s *analyticsService) Snapshot() *dto.AnalyticsSnapshotResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &dto.AnalyticsSnapshotResponse{
		Turns:            s.turns,
		TurnsByCategory:  copyCounts(s.categories),
		TurnsByMethod:    copyCounts(s.methods),
		GuidelineCounts:  copyCounts(s.guidelines),
		EmptyTurns:       s.emptyTurns,
		SubscriberActive: s.active,
	}
	if s.lastEvent != nil {
		ts := *s.lastEvent
		res.LastEventAt = &ts
	}
	return res
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
