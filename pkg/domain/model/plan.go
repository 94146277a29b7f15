package model

import (
	"time"

	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// TimeWindow is a suggested execution slot in the user's timezone
type TimeWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone"`
}

// PlanItem is a single micro-action in a plan. Each item traces back to
// exactly one evidenced candidate.
type PlanItem struct {
	ContentID       types.ContentID `json:"content_id"`
	Title           string          `json:"title"`
	DurationMinutes int             `json:"duration_minutes"`
	WhyItHelps      string          `json:"why_it_helps"`
	Instructions    string          `json:"instructions"`
	Citation        string          `json:"evidence_citation"`
	CitationURL     string          `json:"evidence_url,omitempty"`
	Window          *TimeWindow     `json:"window,omitempty"`
}

// Plan is the validated output of the pipeline: 1-2 items plus an
// optional caution when a guardrail issue could not be fully repaired.
type Plan struct {
	Day     string     `json:"day"`
	Items   []PlanItem `json:"items"`
	Caution string     `json:"caution,omitempty"`
}

// TotalMinutes is the summed duration across all items
func (p Plan) TotalMinutes() int {
	total := 0
	for _, item := range p.Items {
		total += item.DurationMinutes
	}
	return total
}
