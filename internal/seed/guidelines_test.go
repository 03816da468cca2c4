package seed

import (
	"testing"

	"guideline-agent-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestGuidelines_AreValid(t *testing.T) {
	guidelines := Guidelines()

	assert.NotEmpty(t, guidelines)
	seen := map[string]bool{}
	for _, g := range guidelines {
		assert.NotEmpty(t, g.Condition)
		assert.NotEmpty(t, g.Action)
		assert.True(t, g.Active)
		assert.GreaterOrEqual(t, g.Priority, entity.GuidelineMinPriority)
		assert.LessOrEqual(t, g.Priority, entity.GuidelineMaxPriority)
		assert.False(t, seen[g.Condition], "duplicate condition %q", g.Condition)
		seen[g.Condition] = true
	}
}

func TestGuidelines_ReturnsCopies(t *testing.T) {
	first := Guidelines()
	first[0].Condition = "changed"

	assert.NotEqual(t, "changed", Guidelines()[0].Condition)
}
