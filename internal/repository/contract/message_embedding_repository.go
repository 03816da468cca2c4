package contract

import (
	"context"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/repository/specification"
)

type MessageEmbeddingRepository interface {
	// Upsert inserts the embedding or replaces the one stored under the same hash
	Upsert(ctx context.Context, embedding *entity.MessageEmbedding) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MessageEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
