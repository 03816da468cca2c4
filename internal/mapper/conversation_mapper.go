package mapper

import (
	"encoding/json"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/model"

	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// ToEntity decodes the jsonb message history. A corrupt history decodes as empty.
func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	messages := []entity.ContextMessage{}
	if len(c.Messages) > 0 {
		if err := json.Unmarshal(c.Messages, &messages); err != nil {
			messages = []entity.ContextMessage{}
		}
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:        c.Id,
		SessionId: c.SessionId,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) (*model.Conversation, error) {
	if c == nil {
		return nil, nil
	}

	messages := c.Messages
	if messages == nil {
		messages = []entity.ContextMessage{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:        c.Id,
		SessionId: c.SessionId,
		Messages:  datatypes.JSON(raw),
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}
