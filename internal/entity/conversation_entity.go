package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"

	ConversationMaxHistory = 20
)

// ContextMessage is one stored turn of a conversation.
type ContextMessage struct {
	Role           string      `json:"role"`
	Content        string      `json:"content"`
	Timestamp      time.Time   `json:"timestamp"`
	GuidelinesUsed []uuid.UUID `json:"guidelines_used,omitempty"`
}

type Conversation struct {
	Id        uuid.UUID
	SessionId string
	Messages  []ContextMessage
	CreatedAt time.Time
	UpdatedAt *time.Time
}
