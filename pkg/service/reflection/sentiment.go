package reflection

import "strings"

// SentimentScorer produces a sentiment score in [-1, 1] for normalized
// text. Model-backed implementations may plug in at startup; the
// lexicon scorer is the deterministic fallback and default.
type SentimentScorer interface {
	Score(normalized string) float64
}

// LexiconScorer is a word-presence heuristic: each matched positive word
// adds 0.5, each matched negative word subtracts 0.5, clamped to [-1, 1].
// Deterministic for identical input.
type LexiconScorer struct{}

var _ SentimentScorer = &LexiconScorer{}

var (
	positiveWords = []string{
		"good", "great", "calm", "happy", "okay", "content",
		"grateful", "rested", "hopeful", "optimistic",
	}
	negativeWords = []string{
		"bad", "tired", "stressed", "sad", "anxious", "overwhelmed",
		"tense", "worried", "lonely", "exhausted",
	}
)

// Score implements SentimentScorer
func (s *LexiconScorer) Score(normalized string) float64 {
	padded := " " + normalized + " "
	score := 0.0
	for _, w := range positiveWords {
		if strings.Contains(padded, " "+w+" ") {
			score += 0.5
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(padded, " "+w+" ") {
			score -= 0.5
		}
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
