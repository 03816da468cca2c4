package matching

import "math"

// FatigueMultiplier is factor^usageCount. Negative counts are treated as unused.
func FatigueMultiplier(factor float64, usageCount int) float64 {
	if usageCount <= 0 {
		return 1
	}
	return math.Pow(factor, float64(usageCount))
}

func ApplyFatigue(score, factor float64, usageCount int) float64 {
	return score * FatigueMultiplier(factor, usageCount)
}
