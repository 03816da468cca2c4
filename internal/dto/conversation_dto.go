package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConversationMessageResponse struct {
	Role           string      `json:"role"`
	Content        string      `json:"content"`
	Timestamp      time.Time   `json:"timestamp"`
	GuidelinesUsed []uuid.UUID `json:"guidelines_used,omitempty"`
}

type ConversationResponse struct {
	SessionId        string                        `json:"session_id"`
	ConversationId   uuid.UUID                     `json:"conversation_id"`
	Messages         []ConversationMessageResponse `json:"messages"`
	UsedGuidelineIds []uuid.UUID                   `json:"used_guideline_ids"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        *time.Time                    `json:"updated_at"`
}
