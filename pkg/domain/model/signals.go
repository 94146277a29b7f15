package model

import "github.com/eudai-lab/eudaimon/pkg/domain/types"

// ReflectionSignals is the read-only analysis of the user's text,
// created once per request by the reflection analyzer.
type ReflectionSignals struct {
	// Sentiment is in [-1, 1], negative values mean distress
	Sentiment float64 `json:"sentiment"`

	// Themes are ordered by first occurrence in the text, deduplicated
	Themes []string `json:"themes"`

	Energy  types.EnergyLevel `json:"energy_level"`
	Summary string            `json:"summary"`
}

// HasTheme reports whether the given theme was detected
func (s ReflectionSignals) HasTheme(theme string) bool {
	for _, t := range s.Themes {
		if t == theme {
			return true
		}
	}
	return false
}
