package contract

import (
	"context"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
