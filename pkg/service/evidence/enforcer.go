package evidence

import (
	"fmt"
	"strings"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
)

// Enforcer attaches provenance to candidates and drops any whose content
// item carries no citation. It fails closed: an empty result is valid
// and the plan synthesizer falls back to the safe default item.
type Enforcer struct {
	lib *content.Library
}

// New creates an Enforcer over the content library
func New(lib *content.Library) *Enforcer {
	return &Enforcer{lib: lib}
}

// Enforce annotates each candidate with its first citation and a
// one-line rationale. Candidates without provenance are removed,
// preserving rank order.
func (e *Enforcer) Enforce(candidates []model.Candidate, themes []string) []model.EvidencedCandidate {
	evidenced := make([]model.EvidencedCandidate, 0, len(candidates))

	for _, cand := range candidates {
		item, ok := e.lib.Get(cand.ContentID)
		if !ok || !item.Evidenced() {
			continue
		}

		evidenced = append(evidenced, model.EvidencedCandidate{
			Candidate: cand,
			Citation:  item.Citations[0],
			Rationale: rationale(cand, themes),
		})
	}

	return evidenced
}

func rationale(cand model.Candidate, themes []string) string {
	if len(themes) == 0 {
		return cand.Explainer
	}
	return fmt.Sprintf("%s (themes: %s)", cand.Explainer, strings.Join(themes, ", "))
}
