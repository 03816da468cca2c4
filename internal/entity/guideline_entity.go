package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	GuidelineCategoryVentas    = "ventas"
	GuidelineCategoryGestion   = "gestion"
	GuidelineCategoryGeneral   = "general"
	GuidelineCategoryGreetings = "greetings"
	GuidelineCategorySupport   = "support"
	GuidelineCategorySales     = "sales"
	GuidelineCategoryPriority  = "priority"
	GuidelineCategoryTechnical = "technical"

	GuidelineMinPriority = 0
	GuidelineMaxPriority = 10
)

// Guideline is a condition -> action rule injected into the system prompt.
type Guideline struct {
	Id                   uuid.UUID
	Condition            string
	Action               string
	Priority             int
	Active               bool
	Category             string // empty when uncategorised
	ConditionEmbedding   []float32
	EmbeddingModel       string
	EmbeddingGeneratedAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            *time.Time
}

func (g *Guideline) HasCategory() bool {
	return g.Category != ""
}

func (g *Guideline) HasEmbedding() bool {
	return len(g.ConditionEmbedding) > 0
}
