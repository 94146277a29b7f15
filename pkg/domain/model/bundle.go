package model

import "github.com/eudai-lab/eudaimon/pkg/domain/types"

// LifeQualityReport is the trend view returned with a plan
type LifeQualityReport struct {
	Score  float64              `json:"score"`
	Trend  types.TrendLabel     `json:"trend"`
	Recent []*LifeQualityRecord `json:"recent,omitempty"`
}

// PlanBundle is the terminal state of a pipeline run. It is always
// complete, even when every external dependency is unavailable.
type PlanBundle struct {
	SessionID   types.SessionID    `json:"session_id"`
	Empathy     string             `json:"empathetic_message"`
	Signals     ReflectionSignals  `json:"signals"`
	Candidates  []Candidate        `json:"candidates"`
	Plan        Plan               `json:"plan"`
	LifeQuality *LifeQualityReport `json:"life_quality,omitempty"`
	Nudge       string             `json:"personalized_nudge,omitempty"`
}
