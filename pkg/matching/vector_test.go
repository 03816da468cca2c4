package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBlendScores(t *testing.T) {
	assert.InDelta(t, 78.0, BlendScores(90, 30, 0.8), 1e-6)

	pairs := [][2]float64{{90, 30}, {0, 100}, {55.5, 12.25}, {100, 100}}
	for _, p := range pairs {
		assert.InDelta(t, p[1], BlendScores(p[0], p[1], 0), 1e-6)
		assert.InDelta(t, p[0], BlendScores(p[0], p[1], 1), 1e-6)
		assert.InDelta(t, p[0]*0.3+p[1]*0.7, BlendScores(p[0], p[1], 0.3), 1e-6)
	}
}

func vectorFixture() (*entity.Guideline, *entity.Guideline, []*entity.Guideline) {
	semantic := guideline("zzz qqq", 0, "")
	lexical := guideline("ayuda", 0, "")
	return semantic, lexical, []*entity.Guideline{lexical, semantic}
}

func TestVectorStrategy_HybridRank(t *testing.T) {
	semantic, lexical, guidelines := vectorFixture()
	embedding := []float32{0.1, 0.2, 0.3}

	embedder := new(mockEmbedder)
	embedder.On("Embed", mock.Anything, "necesito ayuda").Return(embedding, nil)
	searcher := new(mockSearcher)
	searcher.On("SearchBySimilarity", mock.Anything, embedding, 0.3, 30).
		Return([]SimilarityMatch{{GuidelineId: semantic.Id, Similarity: 0.9}}, nil)

	s := NewVectorStrategy(DefaultConfig(), embedder, searcher, nil, logger.NewNopLogger())
	got := s.HybridRank(context.Background(), "necesito ayuda", "session", guidelines, 0.8)

	require.Len(t, got, 2)

	assert.Same(t, semantic, got[0].Guideline)
	assert.InDelta(t, 90.0, got[0].VectorScore, 1e-6)
	assert.InDelta(t, 0.0, got[0].TextScore, 1e-6)
	assert.InDelta(t, 72.0, got[0].HybridScore, 1e-6)
	assert.Equal(t, got[0].HybridScore, got[0].Score)
	assert.True(t, got[0].Matched)

	// guideline missing from the search results gets vector score 0
	assert.Same(t, lexical, got[1].Guideline)
	assert.InDelta(t, 0.0, got[1].VectorScore, 1e-6)
	assert.InDelta(t, 100.0, got[1].TextScore, 1e-6)
	assert.InDelta(t, 20.0, got[1].HybridScore, 1e-6)
	assert.False(t, got[1].Matched)

	embedder.AssertExpectations(t)
	searcher.AssertExpectations(t)
}

func TestVectorStrategy_FallbackMatchesLexical(t *testing.T) {
	_, _, guidelines := vectorFixture()
	guidelines = append(guidelines,
		guideline("cuando pregunta por precio", 4, entity.GuidelineCategoryVentas),
		guideline("cuando hay una avería", 2, entity.GuidelineCategoryGestion),
	)
	recent := []entity.ContextMessage{{Role: entity.MessageRoleUser, Content: "hola, ¿cuál es el precio?"}}
	in := RankInput{
		SessionId:      "session",
		Message:        "necesito ayuda con el precio",
		Guidelines:     guidelines,
		RecentMessages: recent,
		HybridWeight:   0.8,
	}

	lexical := NewLexicalStrategy(DefaultConfig(), nil)
	want := lexical.RankWithContext(context.Background(), in)

	tests := []struct {
		name  string
		setup func(e *mockEmbedder, s *mockSearcher)
	}{
		{
			name: "embedding provider error",
			setup: func(e *mockEmbedder, s *mockSearcher) {
				e.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))
			},
		},
		{
			name: "empty embedding",
			setup: func(e *mockEmbedder, s *mockSearcher) {
				e.On("Embed", mock.Anything, mock.Anything).Return([]float32{}, nil)
			},
		},
		{
			name: "vector search error",
			setup: func(e *mockEmbedder, s *mockSearcher) {
				e.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
				s.On("SearchBySimilarity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("rpc failed"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := new(mockEmbedder), new(mockSearcher)
			tt.setup(e, s)

			strategy := NewVectorStrategy(DefaultConfig(), e, s, nil, logger.NewNopLogger())
			got := strategy.RankWithContext(context.Background(), in)

			assert.Equal(t, want, got)
			for _, score := range got {
				assert.Zero(t, score.VectorScore)
				assert.Equal(t, score.Score, score.HybridScore)
			}
		})
	}
}

func TestVectorStrategy_TimeoutFallsBack(t *testing.T) {
	_, _, guidelines := vectorFixture()

	embedder := new(mockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	cfg := DefaultConfig()
	cfg.ExternalCallTimeout = 20 * time.Millisecond
	s := NewVectorStrategy(cfg, embedder, new(mockSearcher), nil, logger.NewNopLogger())

	got := s.HybridRank(context.Background(), "necesito ayuda", "session", guidelines, 0.8)

	want := NewLexicalStrategy(cfg, nil).Rank("necesito ayuda", guidelines)
	assert.Equal(t, want, got)
}

func TestVectorStrategy_RankWithContextClampsAndResorts(t *testing.T) {
	sales := guideline("zzz", 0, entity.GuidelineCategoryVentas)
	plain := guideline("qqq", 0, "")
	embedding := []float32{1, 0}

	embedder := new(mockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(embedding, nil)
	searcher := new(mockSearcher)
	searcher.On("SearchBySimilarity", mock.Anything, embedding, mock.Anything, mock.Anything).
		Return([]SimilarityMatch{
			{GuidelineId: sales.Id, Similarity: 0.9},
			{GuidelineId: plain.Id, Similarity: 0.95},
		}, nil)

	s := NewVectorStrategy(DefaultConfig(), embedder, searcher, nil, logger.NewNopLogger())
	got := s.RankWithContext(context.Background(), RankInput{
		Message:        "algo",
		Guidelines:     []*entity.Guideline{plain, sales},
		RecentMessages: []entity.ContextMessage{{Content: "el precio"}},
		HybridWeight:   1,
	})

	require.Len(t, got, 2)
	// 90 + continuity 15 + flow 20, clamped
	assert.Same(t, sales, got[0].Guideline)
	assert.Equal(t, 100.0, got[0].Score)
	assert.Equal(t, 100.0, got[0].HybridScore)
	assert.Same(t, plain, got[1].Guideline)
	assert.InDelta(t, 95.0, got[1].Score, 1e-6)
	assert.InDelta(t, 95.0, got[1].VectorScore, 1e-6)
}
