package matching

import (
	"context"

	"guideline-agent-be/internal/entity"
)

const (
	StrategyLexical = "text"
	StrategyVector  = "vector"
)

// RankInput is everything a strategy needs to rank one turn.
type RankInput struct {
	SessionId      string
	Message        string
	Guidelines     []*entity.Guideline
	RecentMessages []entity.ContextMessage
	HybridWeight   float64
}

// Strategy ranks a guideline catalog for a message, context bonus included.
// Implementations never fail: degraded subsystems fall back to lexical scoring.
type Strategy interface {
	Name() string
	SupportsVectorRanking() bool
	RankWithContext(ctx context.Context, in RankInput) []HybridMatchScore
}

type LexicalStrategy struct {
	threshold float64
	context   *ContextBonusCalculator
}

func NewLexicalStrategy(cfg Config, bonus *ContextBonusCalculator) *LexicalStrategy {
	if bonus == nil {
		bonus = NewContextBonusCalculator(nil)
	}
	return &LexicalStrategy{
		threshold: cfg.Normalize().MatchThreshold,
		context:   bonus,
	}
}

func (s *LexicalStrategy) Name() string { return StrategyLexical }

func (s *LexicalStrategy) SupportsVectorRanking() bool { return false }

// Rank scores every guideline without context.
func (s *LexicalStrategy) Rank(message string, guidelines []*entity.Guideline) []HybridMatchScore {
	scores := lexicalScores(message, guidelines, s.threshold)
	sortByScore(scores)
	return scores
}

func (s *LexicalStrategy) RankWithContext(_ context.Context, in RankInput) []HybridMatchScore {
	scores := lexicalScores(in.Message, in.Guidelines, s.threshold)
	addContextBonus(scores, s.context, in.RecentMessages, s.threshold)
	sortByScore(scores)
	return scores
}

// lexicalScores keeps the input order; callers sort.
func lexicalScores(message string, guidelines []*entity.Guideline, threshold float64) []HybridMatchScore {
	scores := make([]HybridMatchScore, 0, len(guidelines))
	for _, g := range guidelines {
		text := LexicalScore(message, g)
		s := HybridMatchScore{
			MatchScore: MatchScore{Guideline: g},
			TextScore:  text,
		}
		s.setScore(text, threshold)
		scores = append(scores, s)
	}
	return scores
}

func addContextBonus(scores []HybridMatchScore, calc *ContextBonusCalculator, recent []entity.ContextMessage, threshold float64) {
	if len(recent) == 0 {
		return
	}
	for i := range scores {
		bonus := calc.Bonus(scores[i].Guideline, recent)
		if bonus == 0 {
			continue
		}
		scores[i].setScore(scores[i].Score+bonus, threshold)
	}
}
