package contract

import (
	"context"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredGuideline wraps a Guideline with its cosine similarity to a query vector
type ScoredGuideline struct {
	Guideline  *entity.Guideline
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type GuidelineRepository interface {
	Create(ctx context.Context, guideline *entity.Guideline) error
	Update(ctx context.Context, guideline *entity.Guideline) error
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32, embeddingModel string, generatedAt time.Time) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Guideline, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Guideline, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchByVector returns active guidelines whose condition embedding is at least threshold-similar
	SearchByVector(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*ScoredGuideline, error)
}
