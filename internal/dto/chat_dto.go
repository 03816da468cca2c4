package dto

import (
	"github.com/google/uuid"
)

type ChatRequest struct {
	Message        string   `json:"message" validate:"required"`
	SessionId      string   `json:"session_id"`
	MatchingMethod string   `json:"matching_method" validate:"omitempty,oneof=text vector"`
	HybridWeight   *float64 `json:"hybrid_weight" validate:"omitempty,min=0,max=1"`
}

type GuidelineUsedResponse struct {
	Id         uuid.UUID `json:"id"`
	Condition  string    `json:"condition"`
	Action     string    `json:"action"`
	Score      float64   `json:"score"`
	UsageCount int       `json:"usage_count"`
}

type ChatResponse struct {
	Response         string                  `json:"response"`
	GuidelinesUsed   []GuidelineUsedResponse `json:"guidelines_used"`
	SessionId        string                  `json:"session_id"`
	ConversationId   uuid.UUID               `json:"conversation_id"`
	DetectedCategory *string                 `json:"detected_category"`
	MatchingMethod   string                  `json:"matching_method"`
}

// GuidelineUsageMessage is the payload of the in-process usage topic.
type GuidelineUsageMessage struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	GuidelineId    uuid.UUID `json:"guideline_id"`
	Score          float64   `json:"score"`
	Applied        bool      `json:"applied"`
}
