package contract

import (
	"context"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GuidelineUsageRepository interface {
	Create(ctx context.Context, usage *entity.GuidelineUsage) error
	// FindAllWithGuideline preloads the referenced guideline of every record
	FindAllWithGuideline(ctx context.Context, specs ...specification.Specification) ([]*entity.GuidelineUsage, error)
	CountByGuideline(ctx context.Context, conversationId uuid.UUID) (map[uuid.UUID]int, error)
	DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error
}
