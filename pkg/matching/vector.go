package matching

import (
	"context"
	"fmt"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Embedder turns text into a provider-defined vector. Identical text yields the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type SimilarityMatch struct {
	GuidelineId uuid.UUID
	Similarity  float64 // 0.0 to 1.0
}

type SimilaritySearcher interface {
	SearchBySimilarity(ctx context.Context, embedding []float32, threshold float64, limit int) ([]SimilarityMatch, error)
}

// VectorStrategy blends semantic similarity with the lexical score.
type VectorStrategy struct {
	embedder Embedder
	searcher SimilaritySearcher
	context  *ContextBonusCalculator
	cfg      Config
	logger   logger.ILogger
}

func NewVectorStrategy(cfg Config, embedder Embedder, searcher SimilaritySearcher, bonus *ContextBonusCalculator, log logger.ILogger) *VectorStrategy {
	if bonus == nil {
		bonus = NewContextBonusCalculator(nil)
	}
	return &VectorStrategy{
		embedder: embedder,
		searcher: searcher,
		context:  bonus,
		cfg:      cfg.Normalize(),
		logger:   log,
	}
}

func (s *VectorStrategy) Name() string { return StrategyVector }

func (s *VectorStrategy) SupportsVectorRanking() bool { return true }

// HybridRank scores every guideline as vector*w + text*(1-w), falling back to lexical scores
// when the embedding or the similarity search fails.
func (s *VectorStrategy) HybridRank(ctx context.Context, message, sessionId string, guidelines []*entity.Guideline, weight float64) []HybridMatchScore {
	scores := s.hybridScores(ctx, message, sessionId, guidelines, weight)
	sortByScore(scores)
	return scores
}

func (s *VectorStrategy) RankWithContext(ctx context.Context, in RankInput) []HybridMatchScore {
	scores := s.hybridScores(ctx, in.Message, in.SessionId, in.Guidelines, in.HybridWeight)
	addContextBonus(scores, s.context, in.RecentMessages, s.cfg.MatchThreshold)
	sortByScore(scores)
	return scores
}

func (s *VectorStrategy) hybridScores(ctx context.Context, message, sessionId string, guidelines []*entity.Guideline, weight float64) []HybridMatchScore {
	similarities, err := s.similarities(ctx, message)
	if err != nil {
		s.logger.Warn("matching.vector", "Vector ranking failed, falling back to text scoring", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return lexicalScores(message, guidelines, s.cfg.MatchThreshold)
	}

	weight = ClampWeight(weight)
	scores := make([]HybridMatchScore, 0, len(guidelines))
	for _, g := range guidelines {
		text := LexicalScore(message, g)
		vector := clampScore(similarities[g.Id] * 100)
		hs := HybridMatchScore{
			MatchScore:  MatchScore{Guideline: g},
			VectorScore: vector,
			TextScore:   text,
		}
		hs.setScore(BlendScores(vector, text, weight), s.cfg.MatchThreshold)
		scores = append(scores, hs)
	}
	return scores
}

// similarities returns guideline id -> similarity. Timeouts surface as errors like any provider failure.
func (s *VectorStrategy) similarities(ctx context.Context, message string) (map[uuid.UUID]float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ExternalCallTimeout)
	defer cancel()

	embedding, err := s.embedder.Embed(callCtx, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbeddingUnavailable)
	}

	start := time.Now()
	matches, err := s.searcher.SearchBySimilarity(callCtx, embedding, s.cfg.VectorSimilarityThreshold, s.cfg.VectorSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVectorSearchFailed, err)
	}

	s.logger.Debug("matching.vector", "Similarity search completed", map[string]interface{}{
		"results":     len(matches),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	out := make(map[uuid.UUID]float64, len(matches))
	for _, m := range matches {
		out[m.GuidelineId] = m.Similarity
	}
	return out, nil
}

// BlendScores returns vector*w + text*(1-w).
func BlendScores(vectorScore, textScore, weight float64) float64 {
	return vectorScore*weight + textScore*(1-weight)
}
