package matching

import "guideline-agent-be/internal/entity"

// ContextBonusCalculator rewards guidelines that continue the topic of the recent messages.
type ContextBonusCalculator struct {
	flows []FlowRule
}

func NewContextBonusCalculator(flows []FlowRule) *ContextBonusCalculator {
	if flows == nil {
		flows = DefaultFlowRules
	}
	return &ContextBonusCalculator{flows: flows}
}

// Bonus is additive and unclamped. recent is ordered oldest to newest.
func (c *ContextBonusCalculator) Bonus(guideline *entity.Guideline, recent []entity.ContextMessage) float64 {
	if len(recent) == 0 || !guideline.HasCategory() {
		return 0
	}

	bonus := 0.0

	window := recent
	if len(window) > continuityWindow {
		window = window[len(window)-continuityWindow:]
	}
	for _, msg := range window {
		if DetectCategory(msg.Content) == guideline.Category {
			bonus += ContinuityBonus
			break
		}
	}

	lastCategory := DetectCategory(recent[len(recent)-1].Content)
	if lastCategory == "" {
		return bonus
	}
	for _, flow := range c.flows {
		if flow.From == lastCategory && flow.To == guideline.Category {
			bonus += flow.Boost
			break
		}
	}

	return bonus
}
