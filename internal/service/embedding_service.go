package service

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/internal/repository/specification"
	"guideline-agent-be/internal/repository/unitofwork"
	"guideline-agent-be/pkg/embedding"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	embeddingBatchSize         = 10
	embeddingBatchPause        = time.Second
	defaultSimilarThreshold    = 0.8
	defaultCleanupDays         = 7
	defaultTestSearchThreshold = 0.6
	defaultTestSearchLimit     = 5
)

// Embedder is satisfied by embedding.CachedEmbedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, text, taskType string) ([]float32, error)
	ModelName() string
}

type IEmbeddingService interface {
	Status(ctx context.Context) (*dto.EmbeddingStatusResponse, error)
	UpdateGuidelineEmbeddings(ctx context.Context, guidelineIds []uuid.UUID) (*dto.GenerateEmbeddingsResponse, error)
	FindSimilarGuidelines(ctx context.Context, guidelineId uuid.UUID, threshold float64) (*dto.SimilarGuidelinesResponse, error)
	CleanupOldEmbeddings(ctx context.Context, daysToKeep int) (*dto.CleanupEmbeddingsResponse, error)
	TestVectorSearch(ctx context.Context, req *dto.VectorSearchTestRequest) (*dto.VectorSearchTestResponse, error)
	GetGuidelineEmbeddingInfo(ctx context.Context, guidelineId uuid.UUID) (*dto.GuidelineEmbeddingInfoResponse, error)
}

type embeddingService struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   Embedder // nil when no provider is configured
	logger     logger.ILogger
	batchPause time.Duration
	now        func() time.Time
}

func NewEmbeddingService(uowFactory unitofwork.RepositoryFactory, embedder Embedder, log logger.ILogger) IEmbeddingService {
	return &embeddingService{
		uowFactory: uowFactory,
		embedder:   embedder,
		logger:     log,
		batchPause: embeddingBatchPause,
		now:        time.Now,
	}
}

func (s *embeddingService) Status(ctx context.Context) (*dto.EmbeddingStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.GuidelineRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	withEmbeddings, err := uow.GuidelineRepository().Count(ctx, specification.WithEmbedding{})
	if err != nil {
		return nil, err
	}
	cached, err := uow.MessageEmbeddingRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.EmbeddingStatusResponse{
		Status:             "ok",
		ProviderConfigured: s.embedder != nil,
		Guidelines: dto.GuidelineEmbeddingCounts{
			Total:             total,
			WithEmbeddings:    withEmbeddings,
			MissingEmbeddings: total - withEmbeddings,
		},
		MessageCache:        dto.MessageCacheStats{Total: cached},
		VectorSearchEnabled: s.embedder != nil && withEmbeddings > 0,
	}
	if s.embedder != nil {
		model := s.embedder.ModelName()
		res.EmbeddingModel = &model
	}
	return res, nil
}

// UpdateGuidelineEmbeddings embeds the conditions of guidelines that have no embedding yet.
// Batches run concurrently and are spaced out to stay under provider rate limits.
func (s *embeddingService) UpdateGuidelineEmbeddings(ctx context.Context, guidelineIds []uuid.UUID) (*dto.GenerateEmbeddingsResponse, error) {
	if s.embedder == nil {
		return nil, ErrEmbeddingNotAvailable
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{specification.WithoutEmbedding{}}
	if len(guidelineIds) > 0 {
		specs = append(specs, specification.ByIDs{IDs: guidelineIds})
	}

	pending, err := uow.GuidelineRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guidelines: %w", err)
	}

	res := &dto.GenerateEmbeddingsResponse{}
	if len(pending) == 0 {
		s.logger.Info("EMBEDDING", "No guidelines need embedding updates", nil)
	}

	var updated, failed atomic.Int64
	for start := 0; start < len(pending); start += embeddingBatchSize {
		end := min(start+embeddingBatchSize, len(pending))

		g, gctx := errgroup.WithContext(ctx)
		for _, guideline := range pending[start:end] {
			g.Go(func() error {
				if err := s.embedGuideline(gctx, guideline); err != nil {
					failed.Add(1)
					s.logger.Error("EMBEDDING", "Failed to update guideline embedding", map[string]interface{}{
						"guideline_id": guideline.Id.String(),
						"error":        err.Error(),
					})
					return nil
				}
				updated.Add(1)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(pending) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.batchPause):
			}
		}
	}

	res.Updated = int(updated.Load())
	res.Failed = int(failed.Load())

	withEmbeddings, err := uow.GuidelineRepository().Count(ctx, specification.WithEmbedding{})
	if err != nil {
		return nil, err
	}
	res.GuidelinesWithEmbeddings = withEmbeddings

	s.logger.Info("EMBEDDING", "Guideline embeddings generated", map[string]interface{}{
		"updated": res.Updated,
		"failed":  res.Failed,
	})
	return res, nil
}

func (s *embeddingService) embedGuideline(ctx context.Context, guideline *entity.Guideline) error {
	vec, err := s.embedder.Generate(ctx, guideline.Condition, embedding.TaskSemanticSimilarity)
	if err != nil {
		return err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.GuidelineRepository().UpdateEmbedding(ctx, guideline.Id, vec, s.embedder.ModelName(), s.now())
}

// FindSimilarGuidelines flags likely duplicates or conflicts by comparing condition embeddings.
func (s *embeddingService) FindSimilarGuidelines(ctx context.Context, guidelineId uuid.UUID, threshold float64) (*dto.SimilarGuidelinesResponse, error) {
	if threshold <= 0 {
		threshold = defaultSimilarThreshold
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	target, err := uow.GuidelineRepository().FindOne(ctx, specification.ByID{ID: guidelineId})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrGuidelineNotFound
	}
	if !target.HasEmbedding() {
		return nil, ErrGuidelineNoEmbedding
	}

	candidates, err := uow.GuidelineRepository().FindAll(ctx, specification.WithEmbedding{})
	if err != nil {
		return nil, err
	}

	res := &dto.SimilarGuidelinesResponse{
		GuidelineId: guidelineId,
		Threshold:   threshold,
		Similar:     []dto.SimilarGuidelineResponse{},
	}
	for _, g := range candidates {
		if g.Id == guidelineId {
			continue
		}
		similarity, err := embedding.CosineSimilarity(target.ConditionEmbedding, g.ConditionEmbedding)
		if err != nil {
			s.logger.Warn("EMBEDDING", "Skipping guideline with incompatible embedding", map[string]interface{}{
				"guideline_id": g.Id.String(),
				"error":        err.Error(),
			})
			continue
		}
		if similarity >= threshold {
			res.Similar = append(res.Similar, dto.SimilarGuidelineResponse{
				Id:         g.Id,
				Condition:  g.Condition,
				Action:     g.Action,
				Category:   optionalString(g.Category),
				Similarity: similarity,
			})
		}
	}

	sort.SliceStable(res.Similar, func(i, j int) bool {
		return res.Similar[i].Similarity > res.Similar[j].Similarity
	})
	return res, nil
}

func (s *embeddingService) CleanupOldEmbeddings(ctx context.Context, daysToKeep int) (*dto.CleanupEmbeddingsResponse, error) {
	if daysToKeep <= 0 {
		daysToKeep = defaultCleanupDays
	}
	cutoff := s.now().Add(-time.Duration(daysToKeep) * 24 * time.Hour)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.MessageEmbeddingRepository().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	s.logger.Info("EMBEDDING", "Old message embeddings removed", map[string]interface{}{
		"deleted":      deleted,
		"days_to_keep": daysToKeep,
	})
	return &dto.CleanupEmbeddingsResponse{DeletedCount: deleted, OlderThanDays: daysToKeep}, nil
}

func (s *embeddingService) TestVectorSearch(ctx context.Context, req *dto.VectorSearchTestRequest) (*dto.VectorSearchTestResponse, error) {
	if s.embedder == nil {
		return nil, ErrEmbeddingNotAvailable
	}

	threshold := defaultTestSearchThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	limit := defaultTestSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	vec, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.GuidelineRepository().SearchByVector(ctx, vec, threshold, limit)
	if err != nil {
		return nil, err
	}

	res := &dto.VectorSearchTestResponse{Query: req.Query, Results: make([]dto.VectorSearchResult, len(scored))}
	for i, sg := range scored {
		res.Results[i] = dto.VectorSearchResult{
			Id:                   sg.Guideline.Id,
			Condition:            sg.Guideline.Condition,
			Action:               sg.Guideline.Action,
			Category:             optionalString(sg.Guideline.Category),
			Similarity:           sg.Similarity,
			SimilarityPercentage: fmt.Sprintf("%.1f%%", sg.Similarity*100),
		}
	}
	return res, nil
}

func (s *embeddingService) GetGuidelineEmbeddingInfo(ctx context.Context, guidelineId uuid.UUID) (*dto.GuidelineEmbeddingInfoResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	guideline, err := uow.GuidelineRepository().FindOne(ctx, specification.ByID{ID: guidelineId})
	if err != nil {
		return nil, err
	}
	if guideline == nil {
		return nil, ErrGuidelineNotFound
	}

	res := &dto.GuidelineEmbeddingInfoResponse{GuidelineResponse: toGuidelineResponse(guideline)}
	if guideline.HasEmbedding() {
		dim := len(guideline.ConditionEmbedding)
		res.EmbeddingDimension = &dim
		res.EmbeddingModel = optionalString(guideline.EmbeddingModel)
	}
	return res, nil
}

// messageEmbeddingStore backs the embedding cache with the message_embeddings table.
type messageEmbeddingStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMessageEmbeddingStore(uowFactory unitofwork.RepositoryFactory) embedding.MessageStore {
	return &messageEmbeddingStore{uowFactory: uowFactory}
}

func (s *messageEmbeddingStore) FindByHash(ctx context.Context, hash string) (*embedding.StoredEmbedding, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := uow.MessageEmbeddingRepository().FindOne(ctx, specification.ByMessageHash{Hash: hash})
	if err != nil || found == nil {
		return nil, err
	}
	return &embedding.StoredEmbedding{Vector: found.Embedding, Model: found.EmbeddingModel}, nil
}

func (s *messageEmbeddingStore) Save(ctx context.Context, hash, text string, vector []float32, model string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MessageEmbeddingRepository().Upsert(ctx, &entity.MessageEmbedding{
		Id:             uuid.New(),
		MessageHash:    hash,
		MessageText:    text,
		Embedding:      vector,
		EmbeddingModel: model,
		CreatedAt:      time.Now(),
	})
}
