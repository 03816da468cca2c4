package matching

import (
	"context"

	"guideline-agent-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockEmbedder struct{ mock.Mock }

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	v, _ := args.Get(0).([]float32)
	return v, args.Error(1)
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) SearchBySimilarity(ctx context.Context, embedding []float32, threshold float64, limit int) ([]SimilarityMatch, error) {
	args := m.Called(ctx, embedding, threshold, limit)
	v, _ := args.Get(0).([]SimilarityMatch)
	return v, args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) FetchActiveGuidelines(ctx context.Context) ([]*entity.Guideline, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*entity.Guideline)
	return v, args.Error(1)
}

type mockConversations struct{ mock.Mock }

func (m *mockConversations) FetchRecentMessages(ctx context.Context, conversationId uuid.UUID, limit int) ([]entity.ContextMessage, error) {
	args := m.Called(ctx, conversationId, limit)
	v, _ := args.Get(0).([]entity.ContextMessage)
	return v, args.Error(1)
}

func (m *mockConversations) FetchGuidelineUsageCounts(ctx context.Context, conversationId uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, conversationId)
	v, _ := args.Get(0).(map[uuid.UUID]int)
	return v, args.Error(1)
}

type mockUsage struct{ mock.Mock }

func (m *mockUsage) RecordUsage(ctx context.Context, conversationId, guidelineId uuid.UUID, score float64, applied bool) error {
	args := m.Called(ctx, conversationId, guidelineId, score, applied)
	return args.Error(0)
}

// fixedStrategy returns preset scores so pipeline tests do not depend on lexical tables.
type fixedStrategy struct {
	scores []HybridMatchScore
	input  RankInput
}

func (s *fixedStrategy) Name() string                { return "fixed" }
func (s *fixedStrategy) SupportsVectorRanking() bool { return false }
func (s *fixedStrategy) RankWithContext(_ context.Context, in RankInput) []HybridMatchScore {
	s.input = in
	out := make([]HybridMatchScore, len(s.scores))
	copy(out, s.scores)
	return out
}

func fixedScore(g *entity.Guideline, score float64) HybridMatchScore {
	return HybridMatchScore{
		MatchScore:  MatchScore{Guideline: g, Score: score, Matched: score > DefaultMatchThreshold},
		TextScore:   score,
		HybridScore: score,
	}
}
