package mapper

import (
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type GuidelineMapper struct{}

func NewGuidelineMapper() *GuidelineMapper {
	return &GuidelineMapper{}
}

func (m *GuidelineMapper) ToEntity(g *model.Guideline) *entity.Guideline {
	if g == nil {
		return nil
	}

	var updatedAt *time.Time
	if !g.UpdatedAt.IsZero() {
		t := g.UpdatedAt
		updatedAt = &t
	}

	var category string
	if g.Category != nil {
		category = *g.Category
	}

	var embeddingModel string
	if g.EmbeddingModel != nil {
		embeddingModel = *g.EmbeddingModel
	}

	var embedding []float32
	if g.ConditionEmbedding != nil {
		embedding = g.ConditionEmbedding.Slice()
	}

	return &entity.Guideline{
		Id:                   g.Id,
		Condition:            g.Condition,
		Action:               g.Action,
		Priority:             g.Priority,
		Active:               g.Active,
		Category:             category,
		ConditionEmbedding:   embedding,
		EmbeddingModel:       embeddingModel,
		EmbeddingGeneratedAt: g.EmbeddingGeneratedAt,
		CreatedAt:            g.CreatedAt,
		UpdatedAt:            updatedAt,
	}
}

func (m *GuidelineMapper) ToModel(g *entity.Guideline) *model.Guideline {
	if g == nil {
		return nil
	}

	var updatedAt time.Time
	if g.UpdatedAt != nil {
		updatedAt = *g.UpdatedAt
	}

	var category *string
	if g.Category != "" {
		c := g.Category
		category = &c
	}

	var embeddingModel *string
	if g.EmbeddingModel != "" {
		em := g.EmbeddingModel
		embeddingModel = &em
	}

	var embedding *pgvector.Vector
	if len(g.ConditionEmbedding) > 0 {
		v := pgvector.NewVector(g.ConditionEmbedding)
		embedding = &v
	}

	return &model.Guideline{
		Id:                   g.Id,
		Condition:            g.Condition,
		Action:               g.Action,
		Priority:             g.Priority,
		Active:               g.Active,
		Category:             category,
		ConditionEmbedding:   embedding,
		EmbeddingModel:       embeddingModel,
		EmbeddingGeneratedAt: g.EmbeddingGeneratedAt,
		CreatedAt:            g.CreatedAt,
		UpdatedAt:            updatedAt,
	}
}

func (m *GuidelineMapper) ToEntities(guidelines []*model.Guideline) []*entity.Guideline {
	entities := make([]*entity.Guideline, len(guidelines))
	for i, g := range guidelines {
		entities[i] = m.ToEntity(g)
	}
	return entities
}
