package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("guideline-agent/matching")

type CatalogSource interface {
	FetchActiveGuidelines(ctx context.Context) ([]*entity.Guideline, error)
}

type ConversationSource interface {
	// FetchRecentMessages returns at most limit messages, oldest first.
	FetchRecentMessages(ctx context.Context, conversationId uuid.UUID, limit int) ([]entity.ContextMessage, error)
	FetchGuidelineUsageCounts(ctx context.Context, conversationId uuid.UUID) (map[uuid.UUID]int, error)
}

type UsageRecorder interface {
	RecordUsage(ctx context.Context, conversationId, guidelineId uuid.UUID, score float64, applied bool) error
}

type GuidelineCache interface {
	Get(sessionId string) ([]*entity.Guideline, bool)
	Set(sessionId string, guidelines []*entity.Guideline)
	SweepExpired() int
}

type TurnRequest struct {
	SessionId      string
	Message        string
	ConversationId uuid.UUID
	HybridWeight   *float64 // nil uses the configured weight
	// DeferUsage leaves usage recording to CommitUsage, so a turn that fails
	// after ranking does not count against its guidelines.
	DeferUsage bool
}

type RankedGuideline struct {
	Guideline     *entity.Guideline
	Score         float64 // fatigue adjusted
	OriginalScore float64
	UsageCount    int
	VectorScore   float64
	TextScore     float64
}

type TurnResult struct {
	Guidelines       []RankedGuideline
	DetectedCategory string
	Method           string
	CandidateCount   int
	RecentMessages   []entity.ContextMessage
}

func (r *TurnResult) GuidelineIds() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Guidelines))
	for i, g := range r.Guidelines {
		ids[i] = g.Guideline.Id
	}
	return ids
}

// Orchestrator runs the per-turn pipeline: catalog, context, rank, fatigue, top-K, usage.
type Orchestrator struct {
	cfg           Config
	cache         GuidelineCache
	catalog       CatalogSource
	conversations ConversationSource
	usage         UsageRecorder
	strategy      Strategy
	logger        logger.ILogger

	pending sync.WaitGroup
}

func NewOrchestrator(
	cfg Config,
	cache GuidelineCache,
	catalog CatalogSource,
	conversations ConversationSource,
	usage UsageRecorder,
	strategy Strategy,
	log logger.ILogger,
) *Orchestrator {
	cfg = cfg.Normalize()
	if strategy == nil {
		strategy = NewLexicalStrategy(cfg, nil)
	}
	return &Orchestrator{
		cfg:           cfg,
		cache:         cache,
		catalog:       catalog,
		conversations: conversations,
		usage:         usage,
		strategy:      strategy,
		logger:        log,
	}
}

func (o *Orchestrator) Strategy() Strategy {
	return o.strategy
}

func (o *Orchestrator) Rank(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	ctx, span := tracer.Start(ctx, "matching.Rank", trace.WithAttributes(
		attribute.String("session_id", req.SessionId),
		attribute.String("strategy", o.strategy.Name()),
	))
	defer span.End()

	guidelines, err := o.resolveCatalog(ctx, req.SessionId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog unavailable")
		return nil, err
	}

	if removed := o.cache.SweepExpired(); removed > 0 {
		o.logger.Debug("matching.orchestrator", "Swept expired guideline cache entries", map[string]interface{}{
			"removed": removed,
		})
	}

	recent, usageCounts := o.fetchContext(ctx, req.ConversationId)

	weight := o.cfg.HybridWeight
	if req.HybridWeight != nil {
		weight = ClampWeight(*req.HybridWeight)
	}

	ranked := o.strategy.RankWithContext(ctx, RankInput{
		SessionId:      req.SessionId,
		Message:        req.Message,
		Guidelines:     guidelines,
		RecentMessages: recent,
		HybridWeight:   weight,
	})

	selected := o.selectTopK(ranked, usageCounts)

	result := &TurnResult{
		Guidelines:       selected,
		DetectedCategory: DetectCategory(req.Message),
		Method:           o.strategy.Name(),
		CandidateCount:   len(guidelines),
		RecentMessages:   recent,
	}

	span.SetAttributes(
		attribute.Int("candidates", len(guidelines)),
		attribute.Int("selected", len(selected)),
		attribute.String("detected_category", result.DetectedCategory),
	)

	if !req.DeferUsage {
		o.recordUsageAsync(ctx, req.ConversationId, selected)
	}

	return result, nil
}

// CommitUsage records the usage of a turn ranked with DeferUsage.
func (o *Orchestrator) CommitUsage(ctx context.Context, conversationId uuid.UUID, result *TurnResult) {
	if result == nil {
		return
	}
	o.recordUsageAsync(ctx, conversationId, result.Guidelines)
}

func (o *Orchestrator) resolveCatalog(ctx context.Context, sessionId string) ([]*entity.Guideline, error) {
	if cached, ok := o.cache.Get(sessionId); ok {
		return cached, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.ExternalCallTimeout)
	defer cancel()

	guidelines, err := o.catalog.FetchActiveGuidelines(fetchCtx)
	if err != nil {
		o.logger.Error("matching.orchestrator", "Failed to fetch guideline catalog", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	o.cache.Set(sessionId, guidelines)
	return guidelines, nil
}

// fetchContext loads the message window and usage counts concurrently. Failures degrade to empty.
func (o *Orchestrator) fetchContext(ctx context.Context, conversationId uuid.UUID) ([]entity.ContextMessage, map[uuid.UUID]int) {
	recent := []entity.ContextMessage{}
	usageCounts := map[uuid.UUID]int{}
	if conversationId == uuid.Nil || o.conversations == nil {
		return recent, usageCounts
	}

	var g errgroup.Group

	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.ExternalCallTimeout)
		defer cancel()
		msgs, err := o.conversations.FetchRecentMessages(callCtx, conversationId, o.cfg.RecentMessagesContext)
		if err != nil {
			o.logger.Warn("matching.orchestrator", "Recent messages unavailable, ranking without context", map[string]interface{}{
				"conversation_id": conversationId.String(),
				"error":           err.Error(),
			})
			return nil
		}
		if msgs != nil {
			recent = msgs
		}
		return nil
	})

	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.ExternalCallTimeout)
		defer cancel()
		counts, err := o.conversations.FetchGuidelineUsageCounts(callCtx, conversationId)
		if err != nil {
			o.logger.Warn("matching.orchestrator", "Usage counts unavailable, ranking without fatigue", map[string]interface{}{
				"conversation_id": conversationId.String(),
				"error":           err.Error(),
			})
			return nil
		}
		if counts != nil {
			usageCounts = counts
		}
		return nil
	})

	_ = g.Wait()
	return recent, usageCounts
}

func (o *Orchestrator) selectTopK(ranked []HybridMatchScore, usageCounts map[uuid.UUID]int) []RankedGuideline {
	selected := make([]RankedGuideline, 0, len(ranked))
	for _, s := range ranked {
		if !s.Matched {
			continue
		}
		count := usageCounts[s.Guideline.Id]
		selected = append(selected, RankedGuideline{
			Guideline:     s.Guideline,
			Score:         ApplyFatigue(s.Score, o.cfg.FatigueFactor, count),
			OriginalScore: s.Score,
			UsageCount:    count,
			VectorScore:   s.VectorScore,
			TextScore:     s.TextScore,
		})
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})

	if len(selected) > o.cfg.MaxGuidelinesPerResponse {
		selected = selected[:o.cfg.MaxGuidelinesPerResponse]
	}
	return selected
}

// recordUsageAsync writes one usage record per selected guideline without blocking the turn.
func (o *Orchestrator) recordUsageAsync(ctx context.Context, conversationId uuid.UUID, selected []RankedGuideline) {
	if o.usage == nil || conversationId == uuid.Nil || len(selected) == 0 {
		return
	}

	bg := context.WithoutCancel(ctx)
	o.pending.Add(1)
	go func() {
		defer o.pending.Done()
		for _, r := range selected {
			callCtx, cancel := context.WithTimeout(bg, o.cfg.ExternalCallTimeout)
			err := o.usage.RecordUsage(callCtx, conversationId, r.Guideline.Id, r.Score, true)
			cancel()
			if err != nil {
				o.logger.Error("matching.orchestrator", "Failed to record guideline usage", map[string]interface{}{
					"conversation_id": conversationId.String(),
					"guideline_id":    r.Guideline.Id.String(),
					"error":           err.Error(),
				})
			}
		}
	}()
}

// Wait blocks until in-flight usage writes finish or the timeout elapses.
// On timeout the watcher goroutine stays parked until the writes complete.
func (o *Orchestrator) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		o.pending.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
