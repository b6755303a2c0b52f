package chat

import "strings"

// ScoreWeights holds the importance multipliers used to prioritize turns
// during pruning. The values are tuning constants, not derived from any
// model; override them via the context.weights config section.
type ScoreWeights struct {
	UserBonus     float64 // applied to user turns
	QuestionBonus float64 // applied when the content contains a question mark
	ShortPenalty  float64 // applied below ShortTokens
	LongPenalty   float64 // applied above LongTokens
	ShortTokens   int
	LongTokens    int
}

// DefaultScoreWeights returns the stock multipliers.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		UserBonus:     1.2,
		QuestionBonus: 1.1,
		ShortPenalty:  0.8,
		LongPenalty:   0.9,
		ShortTokens:   5,
		LongTokens:    500,
	}
}

// Score rates how much evicting a turn would hurt conversation coherence.
// Deterministic and pure: the same inputs always produce the same score.
// User intent outranks assistant filler, questions outrank statements, and
// very short or very long turns are slightly discounted so more turns fit
// per unit of budget.
func (w ScoreWeights) Score(role, content string, tokenCount int) float64 {
	score := 1.0

	if role == RoleUser {
		score *= w.UserBonus
	}
	if strings.Contains(content, "?") {
		score *= w.QuestionBonus
	}
	if tokenCount < w.ShortTokens {
		score *= w.ShortPenalty
	}
	if tokenCount > w.LongTokens {
		score *= w.LongPenalty
	}

	return score
}
