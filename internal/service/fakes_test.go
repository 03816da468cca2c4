package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/internal/repository/contract"
	"guideline-agent-be/internal/repository/specification"
	"guideline-agent-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var testLogger = logger.NewNopLogger()

// memoryStore backs the fake repositories. Specifications are interpreted by type.
type memoryStore struct {
	mu                sync.Mutex
	guidelines        []*entity.Guideline
	conversations     map[uuid.UUID]*entity.Conversation
	usages            []*entity.GuidelineUsage
	messageEmbeddings map[string]*entity.MessageEmbedding
	vectorResults     []*contract.ScoredGuideline

	errs map[string]error

	// beforeConversationCreate runs inside Create and may return an error to simulate races
	beforeConversationCreate func(c *entity.Conversation) error
	commits                  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		conversations:     make(map[uuid.UUID]*entity.Conversation),
		messageEmbeddings: make(map[string]*entity.MessageEmbedding),
		errs:              make(map[string]error),
	}
}

func (s *memoryStore) fail(op string, err error) { s.errs[op] = err }

func (s *memoryStore) err(op string) error { return s.errs[op] }

func (s *memoryStore) addGuideline(g *entity.Guideline) *entity.Guideline {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.Id == uuid.Nil {
		g.Id = uuid.New()
	}
	s.guidelines = append(s.guidelines, g)
	return g
}

type fakeFactory struct {
	store *memoryStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeUnitOfWork struct {
	store *memoryStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }

func (u *fakeUnitOfWork) Commit() error {
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error { return nil }

func (u *fakeUnitOfWork) GuidelineRepository() contract.GuidelineRepository {
	return &fakeGuidelineRepo{s: u.store}
}

func (u *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{s: u.store}
}

func (u *fakeUnitOfWork) GuidelineUsageRepository() contract.GuidelineUsageRepository {
	return &fakeUsageRepo{s: u.store}
}

func (u *fakeUnitOfWork) MessageEmbeddingRepository() contract.MessageEmbeddingRepository {
	return &fakeMessageEmbeddingRepo{s: u.store}
}

func guidelineMatches(g *entity.Guideline, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ActiveOnly:
			if !g.Active {
				return false
			}
		case specification.ByCategory:
			if g.Category != sp.Category {
				return false
			}
		case specification.ByID:
			if g.Id != sp.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range sp.IDs {
				found = found || id == g.Id
			}
			if !found {
				return false
			}
		case specification.WithEmbedding:
			if !g.HasEmbedding() {
				return false
			}
		case specification.WithoutEmbedding:
			if g.HasEmbedding() {
				return false
			}
		case specification.GuidelineSearchQuery:
			q := strings.ToLower(sp.Query)
			if !strings.Contains(strings.ToLower(g.Condition), q) &&
				!strings.Contains(strings.ToLower(g.Action), q) &&
				!strings.Contains(strings.ToLower(g.Category), q) {
				return false
			}
		}
	}
	return true
}

func paginationLimit(specs []specification.Specification) int {
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			return p.Limit
		}
	}
	return 0
}

type fakeGuidelineRepo struct{ s *memoryStore }

func (r *fakeGuidelineRepo) Create(ctx context.Context, g *entity.Guideline) error {
	if err := r.s.err("Guideline.Create"); err != nil {
		return err
	}
	g.CreatedAt = time.Now()
	copied := *g
	r.s.addGuideline(&copied)
	return nil
}

func (r *fakeGuidelineRepo) Update(ctx context.Context, g *entity.Guideline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.guidelines {
		if existing.Id == g.Id {
			copied := *g
			r.s.guidelines[i] = &copied
		}
	}
	return nil
}

func (r *fakeGuidelineRepo) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32, model string, at time.Time) error {
	if err := r.s.err("Guideline.UpdateEmbedding"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.guidelines {
		if g.Id == id {
			g.ConditionEmbedding = embedding
			g.EmbeddingModel = model
			g.EmbeddingGeneratedAt = &at
		}
	}
	return nil
}

func (r *fakeGuidelineRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Guideline, error) {
	found, err := r.FindAll(ctx, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *fakeGuidelineRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Guideline, error) {
	if err := r.s.err("Guideline.FindAll"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := []*entity.Guideline{}
	for _, g := range r.s.guidelines {
		if guidelineMatches(g, specs) {
			copied := *g
			result = append(result, &copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Priority > result[j].Priority })
	if limit := paginationLimit(specs); limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeGuidelineRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindAll(ctx, specs...)
	return int64(len(found)), err
}

func (r *fakeGuidelineRepo) SearchByVector(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*contract.ScoredGuideline, error) {
	if err := r.s.err("Guideline.SearchByVector"); err != nil {
		return nil, err
	}
	result := []*contract.ScoredGuideline{}
	for _, sg := range r.s.vectorResults {
		if sg.Similarity >= threshold && (limit <= 0 || len(result) < limit) {
			result = append(result, sg)
		}
	}
	return result, nil
}

type fakeConversationRepo struct{ s *memoryStore }

func copyConversation(c *entity.Conversation) *entity.Conversation {
	copied := *c
	copied.Messages = append([]entity.ContextMessage(nil), c.Messages...)
	return &copied
}

func (r *fakeConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	if hook := r.s.beforeConversationCreate; hook != nil {
		if err := hook(c); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.conversations[c.Id] = copyConversation(c)
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	if err := r.s.err("Conversation.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.conversations[c.Id] = copyConversation(c)
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	if err := r.s.err("Conversation.FindOne"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.conversations {
		ok := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByID:
				ok = ok && c.Id == sp.ID
			case specification.BySessionID:
				ok = ok && c.SessionId == sp.SessionID
			}
		}
		if ok {
			return copyConversation(c), nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.conversations, id)
	return nil
}

type fakeUsageRepo struct{ s *memoryStore }

func (r *fakeUsageRepo) Create(ctx context.Context, u *entity.GuidelineUsage) error {
	if err := r.s.err("Usage.Create"); err != nil {
		return err
	}
	// gorm aborts a write on a cancelled context.
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *u
	r.s.usages = append(r.s.usages, &copied)
	return nil
}

func (r *fakeUsageRepo) FindAllWithGuideline(ctx context.Context, specs ...specification.Specification) ([]*entity.GuidelineUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := []*entity.GuidelineUsage{}
	for _, u := range r.s.usages {
		ok := true
		for _, spec := range specs {
			if sp, isConv := spec.(specification.ByConversationID); isConv {
				ok = ok && u.ConversationId == sp.ConversationID
			}
		}
		if !ok {
			continue
		}
		copied := *u
		for _, g := range r.s.guidelines {
			if g.Id == u.GuidelineId {
				copied.Guideline = g
			}
		}
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeUsageRepo) CountByGuideline(ctx context.Context, conversationId uuid.UUID) (map[uuid.UUID]int, error) {
	if err := r.s.err("Usage.CountByGuideline"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[uuid.UUID]int{}
	for _, u := range r.s.usages {
		if u.ConversationId == conversationId {
			counts[u.GuidelineId]++
		}
	}
	return counts, nil
}

func (r *fakeUsageRepo) DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.usages[:0]
	for _, u := range r.s.usages {
		if u.ConversationId != conversationId {
			kept = append(kept, u)
		}
	}
	r.s.usages = kept
	return nil
}

func (r *memoryStore) usageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.usages)
}

type fakeMessageEmbeddingRepo struct{ s *memoryStore }

func (r *fakeMessageEmbeddingRepo) Upsert(ctx context.Context, e *entity.MessageEmbedding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *e
	r.s.messageEmbeddings[e.MessageHash] = &copied
	return nil
}

func (r *fakeMessageEmbeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MessageEmbedding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, spec := range specs {
		if sp, ok := spec.(specification.ByMessageHash); ok {
			if e, found := r.s.messageEmbeddings[sp.Hash]; found {
				copied := *e
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeMessageEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.messageEmbeddings)), nil
}

func (r *fakeMessageEmbeddingRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for hash, e := range r.s.messageEmbeddings {
		if e.CreatedAt.Before(cutoff) {
			delete(r.s.messageEmbeddings, hash)
			deleted++
		}
	}
	return deleted, nil
}
