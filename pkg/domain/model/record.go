package model

import (
	"encoding/json"
	"time"

	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// LifeQualityRecord is one point of the append-only per-user wellbeing
// trend history. Scores are in [0, 100] and consecutive records for the
// same user never differ by more than the volatility cap.
type LifeQualityRecord struct {
	SessionID types.SessionID  `json:"session_id" firestore:"SessionID"`
	UserID    types.UserID     `json:"user_id" firestore:"UserID"`
	Score     float64          `json:"score" firestore:"Score"`
	Trend     types.TrendLabel `json:"trend" firestore:"Trend"`
	CreatedAt time.Time        `json:"created_at" firestore:"CreatedAt"`
}

// StepRecord is the audit trail entry for one pipeline stage. Snapshots
// are redacted before they reach persistence.
type StepRecord struct {
	SessionID types.SessionID   `json:"session_id" firestore:"SessionID"`
	Step      types.StepName    `json:"step" firestore:"Step"`
	Input     json.RawMessage   `json:"input" firestore:"Input"`
	Output    json.RawMessage   `json:"output" firestore:"Output"`
	StartedAt time.Time         `json:"started_at" firestore:"StartedAt"`
	EndedAt   time.Time         `json:"ended_at" firestore:"EndedAt"`
	Metadata  map[string]string `json:"metadata,omitempty" firestore:"Metadata,omitempty"`
}
