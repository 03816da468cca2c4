package matching

import (
	"math"
	"sort"

	"guideline-agent-be/internal/entity"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

// MatchScore is the relevance of one guideline for the current turn.
type MatchScore struct {
	Guideline *entity.Guideline
	Score     float64
	Matched   bool
}

// HybridMatchScore carries the components of a blended score. HybridScore always equals Score.
// Pure lexical rankings report VectorScore 0 and HybridScore equal to the lexical score.
type HybridMatchScore struct {
	MatchScore
	VectorScore float64
	TextScore   float64
	HybridScore float64
}

// clampScore is the single clamp policy shared by the lexical, hybrid and context paths.
func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

func (s *HybridMatchScore) setScore(v, threshold float64) {
	s.Score = clampScore(v)
	s.HybridScore = s.Score
	s.Matched = s.Score > threshold
}

// sortByScore orders descending, keeping input order between equal scores.
func sortByScore(scores []HybridMatchScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
}
