package unitofwork

import (
	"context"

	"guideline-agent-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	GuidelineRepository() contract.GuidelineRepository
	ConversationRepository() contract.ConversationRepository
	GuidelineUsageRepository() contract.GuidelineUsageRepository
	MessageEmbeddingRepository() contract.MessageEmbeddingRepository
}
