package matching

import (
	"strings"
	"unicode/utf8"

	"guideline-agent-be/internal/entity"
)

// CanonicalCondition lowercases a condition and strips its leading filler ("cuando el usuario ...").
func CanonicalCondition(condition string) string {
	clean := strings.ToLower(condition)
	for _, c := range conditionCleaners {
		clean = c.re.ReplaceAllString(clean, c.replacement)
	}
	return strings.TrimSpace(clean)
}

// LexicalScore rates how well message triggers the guideline condition, in [0,100].
func LexicalScore(message string, guideline *entity.Guideline) float64 {
	lowerMessage := strings.ToLower(message)
	condition := CanonicalCondition(guideline.Condition)

	if lowerMessage == condition {
		return ExactMatchScore
	}

	score := verbPatternBonus(lowerMessage, condition)

	if strings.Contains(lowerMessage, condition) {
		score += ContainmentBonus
	}

	score += synonymBonus(lowerMessage, condition)
	score += wordOverlapBonus(lowerMessage, condition)
	score += float64(guideline.Priority) * PriorityMultiplier

	return clampScore(score)
}

// verbPatternBonus applies at most one verb pattern: the first whose captured keyword is in the message.
func verbPatternBonus(message, condition string) float64 {
	for _, p := range verbPatterns {
		m := p.re.FindStringSubmatch(condition)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		if strings.Contains(message, m[1]) {
			return p.weight
		}
	}
	return 0
}

// synonymBonus adds one bonus per dictionary key present in the condition that has a synonym in the message.
func synonymBonus(message, condition string) float64 {
	bonus := 0.0
	for _, entry := range synonymTable {
		if !strings.Contains(condition, entry.key) {
			continue
		}
		for _, synonym := range entry.synonyms {
			if strings.Contains(message, synonym) {
				bonus += SynonymBonus
				break
			}
		}
	}
	return bonus
}

func wordOverlapBonus(message, condition string) float64 {
	messageWords := strings.Fields(message)

	significant, matched := 0, 0
	for _, word := range strings.Fields(condition) {
		if _, skip := stopwords[word]; skip {
			continue
		}
		significant++
		for _, msgWord := range messageWords {
			if wordsMatch(word, msgWord) {
				matched++
				break
			}
		}
	}

	if significant == 0 {
		return 0
	}
	return float64(matched) / float64(significant) * WordOverlapWeight
}

func wordsMatch(condWord, msgWord string) bool {
	if condWord == msgWord {
		return true
	}
	if utf8.RuneCountInString(condWord) > partialMatchMinRunes && utf8.RuneCountInString(msgWord) > partialMatchMinRunes {
		return strings.Contains(msgWord, condWord) || strings.Contains(condWord, msgWord)
	}
	return false
}
