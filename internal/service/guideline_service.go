package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/internal/repository/specification"
	"guideline-agent-be/internal/repository/unitofwork"
	"guideline-agent-be/pkg/matching"

	"github.com/google/uuid"
)

const (
	defaultSearchLimit = 10
	topGuidelinesLimit = 5
	uncategorized      = "uncategorized"
)

type IGuidelineService interface {
	GetAll(ctx context.Context) (*dto.GuidelineListResponse, error)
	GetActive(ctx context.Context) (*dto.GuidelineListResponse, error)
	Create(ctx context.Context, req *dto.CreateGuidelineRequest) (*dto.GuidelineResponse, error)
	Search(ctx context.Context, query string, limit int) (*dto.SearchGuidelineResponse, error)
	GetByCategory(ctx context.Context, category string) (*dto.GuidelineListResponse, error)
	GetUsageStatistics(ctx context.Context, conversationId *uuid.UUID) (*dto.GuidelineStatisticsResponse, error)
	GetUsageReport(ctx context.Context) (*dto.GuidelineUsageReportResponse, error)

	matching.CatalogSource
	matching.SimilaritySearcher
}

// catalogInvalidator is implemented by the session guideline cache.
type catalogInvalidator interface {
	Flush()
}

type guidelineService struct {
	uowFactory unitofwork.RepositoryFactory
	catalog    catalogInvalidator
	logger     logger.ILogger
}

func NewGuidelineService(uowFactory unitofwork.RepositoryFactory, catalog catalogInvalidator, log logger.ILogger) IGuidelineService {
	return &guidelineService{
		uowFactory: uowFactory,
		catalog:    catalog,
		logger:     log,
	}
}

func (s *guidelineService) GetAll(ctx context.Context) (*dto.GuidelineListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	guidelines, err := uow.GuidelineRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toGuidelineList(guidelines), nil
}

func (s *guidelineService) GetActive(ctx context.Context) (*dto.GuidelineListResponse, error) {
	guidelines, err := s.FetchActiveGuidelines(ctx)
	if err != nil {
		return nil, err
	}
	return toGuidelineList(guidelines), nil
}

func (s *guidelineService) Create(ctx context.Context, req *dto.CreateGuidelineRequest) (*dto.GuidelineResponse, error) {
	guideline := &entity.Guideline{
		Id:        uuid.New(),
		Condition: strings.TrimSpace(req.Condition),
		Action:    strings.TrimSpace(req.Action),
		Active:    true,
	}
	if req.Priority != nil {
		guideline.Priority = *req.Priority
	}
	if guideline.Priority < entity.GuidelineMinPriority || guideline.Priority > entity.GuidelineMaxPriority {
		return nil, ErrInvalidPriority
	}
	if req.Active != nil {
		guideline.Active = *req.Active
	}
	if req.Category != nil {
		guideline.Category = strings.TrimSpace(*req.Category)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GuidelineRepository().Create(ctx, guideline); err != nil {
		return nil, err
	}

	// cached catalogs would hide the new guideline until their TTL expires
	if s.catalog != nil {
		s.catalog.Flush()
	}

	s.logger.Info("GUIDELINE", "Guideline created", map[string]interface{}{
		"guideline_id": guideline.Id.String(),
		"category":     guideline.Category,
		"priority":     guideline.Priority,
	})

	res := toGuidelineResponse(guideline)
	return &res, nil
}

func (s *guidelineService) Search(ctx context.Context, query string, limit int) (*dto.SearchGuidelineResponse, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	guidelines, err := uow.GuidelineRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.GuidelineSearchQuery{Query: query},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	list := toGuidelineList(guidelines)
	return &dto.SearchGuidelineResponse{
		Query:      query,
		Guidelines: list.Guidelines,
		Count:      list.Count,
	}, nil
}

func (s *guidelineService) GetByCategory(ctx context.Context, category string) (*dto.GuidelineListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	guidelines, err := uow.GuidelineRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.ByCategory{Category: category},
	)
	if err != nil {
		return nil, err
	}
	return toGuidelineList(guidelines), nil
}

func (s *guidelineService) GetUsageStatistics(ctx context.Context, conversationId *uuid.UUID) (*dto.GuidelineStatisticsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var specs []specification.Specification
	if conversationId != nil {
		specs = append(specs, specification.ByConversationID{ConversationID: *conversationId})
	}

	usages, err := uow.GuidelineUsageRepository().FindAllWithGuideline(ctx, specs...)
	if err != nil {
		return nil, err
	}

	return buildUsageStatistics(usages), nil
}

func (s *guidelineService) GetUsageReport(ctx context.Context) (*dto.GuidelineUsageReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	usages, err := uow.GuidelineUsageRepository().FindAllWithGuideline(ctx)
	if err != nil {
		return nil, err
	}
	return buildUsageReport(usages), nil
}

// FetchActiveGuidelines feeds the ranking pipeline on a session cache miss.
func (s *guidelineService) FetchActiveGuidelines(ctx context.Context) ([]*entity.Guideline, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.GuidelineRepository().FindAll(ctx, specification.ActiveOnly{})
}

func (s *guidelineService) SearchBySimilarity(ctx context.Context, embedding []float32, threshold float64, limit int) ([]matching.SimilarityMatch, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.GuidelineRepository().SearchByVector(ctx, embedding, threshold, limit)
	if err != nil {
		return nil, err
	}

	matches := make([]matching.SimilarityMatch, len(scored))
	for i, sg := range scored {
		matches[i] = matching.SimilarityMatch{
			GuidelineId: sg.Guideline.Id,
			Similarity:  sg.Similarity,
		}
	}
	return matches, nil
}

func buildUsageStatistics(usages []*entity.GuidelineUsage) *dto.GuidelineStatisticsResponse {
	stats := &dto.GuidelineStatisticsResponse{
		TopGuidelines:    []dto.TopGuidelineUsage{},
		UsagesByCategory: map[string]int{},
	}
	if len(usages) == 0 {
		return stats
	}

	counts := make(map[uuid.UUID]int)
	firstSeen := make(map[uuid.UUID]*entity.GuidelineUsage)
	order := make([]uuid.UUID, 0)
	var scoreSum float64

	for _, u := range usages {
		scoreSum += u.Score
		if u.Applied {
			stats.AppliedCount++
		}
		if _, ok := counts[u.GuidelineId]; !ok {
			order = append(order, u.GuidelineId)
			firstSeen[u.GuidelineId] = u
		}
		counts[u.GuidelineId]++

		category := uncategorized
		if u.Guideline != nil && u.Guideline.HasCategory() {
			category = u.Guideline.Category
		}
		stats.UsagesByCategory[category]++
	}

	total := len(usages)
	stats.TotalUsages = total
	stats.UniqueGuidelines = len(counts)
	stats.AverageScore = round2(scoreSum / float64(total))
	stats.ApplicationRate = round2(float64(stats.AppliedCount) / float64(total))

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topGuidelinesLimit {
		order = order[:topGuidelinesLimit]
	}
	for _, id := range order {
		stats.TopGuidelines = append(stats.TopGuidelines, dto.TopGuidelineUsage{
			GuidelineId: id,
			Count:       counts[id],
			Guideline:   toGuidelineSummary(firstSeen[id].Guideline),
		})
	}

	return stats
}

func buildUsageReport(usages []*entity.GuidelineUsage) *dto.GuidelineUsageReportResponse {
	report := &dto.GuidelineUsageReportResponse{Guidelines: []dto.GuidelineUsageDetail{}}
	if len(usages) == 0 {
		return report
	}

	index := make(map[uuid.UUID]int)
	scoreSums := make([]float64, 0)
	var scoreSum float64

	for _, u := range usages {
		scoreSum += u.Score
		if u.Applied {
			report.Summary.AppliedCount++
		}

		i, ok := index[u.GuidelineId]
		if !ok {
			i = len(report.Guidelines)
			index[u.GuidelineId] = i
			report.Guidelines = append(report.Guidelines, dto.GuidelineUsageDetail{
				GuidelineId: u.GuidelineId,
				Guideline:   toGuidelineSummary(u.Guideline),
			})
			scoreSums = append(scoreSums, 0)
		}
		detail := &report.Guidelines[i]
		detail.UsageCount++
		if u.Applied {
			detail.AppliedCount++
		}
		scoreSums[i] += u.Score
		detail.AverageScore = scoreSums[i] / float64(detail.UsageCount)
	}

	report.Summary.TotalUsageRecords = len(usages)
	report.Summary.NotAppliedCount = len(usages) - report.Summary.AppliedCount
	report.Summary.AverageScore = scoreSum / float64(len(usages))

	sort.SliceStable(report.Guidelines, func(i, j int) bool {
		return report.Guidelines[i].UsageCount > report.Guidelines[j].UsageCount
	})
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toGuidelineSummary(g *entity.Guideline) *dto.GuidelineSummary {
	if g == nil {
		return nil
	}
	return &dto.GuidelineSummary{
		Condition: g.Condition,
		Action:    g.Action,
		Category:  optionalString(g.Category),
	}
}

func toGuidelineResponse(g *entity.Guideline) dto.GuidelineResponse {
	return dto.GuidelineResponse{
		Id:           g.Id,
		Condition:    g.Condition,
		Action:       g.Action,
		Priority:     g.Priority,
		Active:       g.Active,
		Category:     optionalString(g.Category),
		HasEmbedding: g.HasEmbedding(),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func toGuidelineList(guidelines []*entity.Guideline) *dto.GuidelineListResponse {
	res := &dto.GuidelineListResponse{Guidelines: make([]dto.GuidelineResponse, len(guidelines))}
	for i, g := range guidelines {
		res.Guidelines[i] = toGuidelineResponse(g)
	}
	res.Count = len(guidelines)
	return res
}
