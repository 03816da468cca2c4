package events

import "time"

const (
	TypeGuidelinesMatched = "GUIDELINES_MATCHED"
)

type MatchedGuideline struct {
	Id         string
	Score      float64
	UsageCount int
}

// NewGuidelinesMatchedEvent describes the outcome of one ranked chat turn.
func NewGuidelinesMatchedEvent(sessionId, conversationId, category, method string, candidates int, matched []MatchedGuideline) BaseEvent {
	ids := make([]interface{}, len(matched))
	scores := make([]interface{}, len(matched))
	for i, m := range matched {
		ids[i] = m.Id
		scores[i] = m.Score
	}

	return BaseEvent{
		Type: TypeGuidelinesMatched,
		Data: map[string]interface{}{
			"session_id":        sessionId,
			"conversation_id":   conversationId,
			"detected_category": category,
			"matching_method":   method,
			"candidates":        candidates,
			"guideline_ids":     ids,
			"scores":            scores,
		},
		OccurredAt: time.Now().UTC(),
	}
}
