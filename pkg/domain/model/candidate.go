package model

import "github.com/eudai-lab/eudaimon/pkg/domain/types"

// Candidate is a scored, ranked reference to a content item produced by
// the retrieval engine. Candidates are ephemeral and ordered by Score
// descending, ties broken by ContentID ascending.
type Candidate struct {
	ContentID types.ContentID `json:"content_id"`
	Score     float64         `json:"score"`

	// Explainer quotes or paraphrases the content field that drove the
	// score. Never free-generated.
	Explainer string `json:"explainer"`
}

// EvidencedCandidate is a Candidate that passed evidence enforcement
type EvidencedCandidate struct {
	Candidate

	Citation  Citation `json:"citation"`
	Rationale string   `json:"rationale"`
}
