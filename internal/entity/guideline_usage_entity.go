package entity

import (
	"time"

	"github.com/google/uuid"
)

// GuidelineUsage is an append-only record of a guideline applied in a conversation.
type GuidelineUsage struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	GuidelineId    uuid.UUID
	Score          float64
	Applied        bool
	CreatedAt      time.Time

	Guideline *Guideline // populated by FindAllWithGuideline
}
