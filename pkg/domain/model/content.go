package model

import "github.com/eudai-lab/eudaimon/pkg/domain/types"

// Citation is a source reference justifying a content item
type Citation struct {
	Source string `json:"source" toml:"source"`
	URL    string `json:"url,omitempty" toml:"url"`
}

// ContentItem is a curated micro-action loaded once at startup.
// Items are immutable and shared across concurrent requests.
type ContentItem struct {
	ID              types.ContentID `json:"id" toml:"id"`
	Title           string          `json:"title" toml:"title"`
	Tags            []string        `json:"tags" toml:"tags"`
	DurationMinutes int             `json:"duration_minutes" toml:"duration_minutes"`

	// MinMinutes, when lower than DurationMinutes, marks the item as
	// variable-length: guardrails may shrink it instead of dropping it.
	MinMinutes int `json:"min_minutes,omitempty" toml:"min_minutes"`

	Summary      string     `json:"summary" toml:"summary"`
	Instructions string     `json:"instructions" toml:"instructions"`
	SafetyFlags  []string   `json:"safety_flags,omitempty" toml:"safety_flags"`
	Citations    []Citation `json:"citations,omitempty" toml:"citations"`
}

// HasTag reports whether the item carries the given tag (case-insensitive
// matching is the caller's concern; tags are stored lowercased).
func (c ContentItem) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Evidenced reports whether the item carries at least one citation
func (c ContentItem) Evidenced() bool {
	return len(c.Citations) > 0
}
