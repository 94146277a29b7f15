package planner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// MaxPlanItems bounds how many micro-actions a single day plan may hold
const MaxPlanItems = 2

// DefaultGenerationTimeout bounds the LLM call; past it the
// deterministic fallback is used unconditionally.
const DefaultGenerationTimeout = 20 * time.Second

// durationSlots are the preferred chunk sizes for the fallback builder,
// smallest first so short time budgets still yield two items.
var durationSlots = []int{5, 10, 15, 20, 25, 30}

// Synthesizer produces a draft plan from evidenced candidates. The
// generative path is attempted at most twice (the second with a
// stricter prompt); every failure mode lands on the deterministic
// fallback, which is total: it always yields a plan.
type Synthesizer struct {
	llm     gollem.LLMClient
	lib     *content.Library
	timeout time.Duration
}

// Option is a functional option for Synthesizer configuration
type Option func(*Synthesizer)

// WithLLM enables the generative path
func WithLLM(client gollem.LLMClient) Option {
	return func(s *Synthesizer) {
		s.llm = client
	}
}

// WithTimeout overrides the generation timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) {
		s.timeout = d
	}
}

// New creates a Synthesizer. Without WithLLM only the deterministic
// path is used.
func New(lib *content.Library, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		lib:     lib,
		timeout: DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds a draft plan. The returned bool reports whether the
// generative path produced it. Never returns an error: generation
// problems degrade to the fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, candidates []model.EvidencedCandidate, uc model.UserContext, signals model.ReflectionSignals) (model.Plan, bool) {
	if s.llm != nil && len(candidates) > 0 {
		if plan, ok := s.generate(ctx, candidates, uc, signals); ok {
			return plan, true
		}
	}
	return s.Fallback(candidates, uc.Preferences.AvailableMinutes), false
}

// generate runs the two-attempt generative state machine: attempt with
// the standard prompt, then one reattempt with the strict prompt, then
// give up.
func (s *Synthesizer) generate(ctx context.Context, candidates []model.EvidencedCandidate, uc model.UserContext, signals model.ReflectionSignals) (model.Plan, bool) {
	logger := logging.From(ctx)

	prompts := []string{
		buildPlanPrompt(candidates, uc, signals, false),
		buildPlanPrompt(candidates, uc, signals, true),
	}

	for attempt, prompt := range prompts {
		plan, err := s.generateOnce(ctx, prompt, candidates, uc.Preferences.AvailableMinutes)
		if err == nil {
			return plan, true
		}
		logger.Warn("plan generation attempt failed, degrading",
			"attempt", attempt+1,
			"error", err.Error(),
		)
	}

	return model.Plan{}, false
}

func (s *Synthesizer) generateOnce(ctx context.Context, prompt string, candidates []model.EvidencedCandidate, availableMinutes int) (model.Plan, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.llm.NewSession(genCtx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(planResponseSchema()),
	)
	if err != nil {
		return model.Plan{}, err
	}

	resp, err := session.GenerateContent(genCtx, gollem.Text(prompt))
	if err != nil {
		return model.Plan{}, err
	}
	if len(resp.Texts) == 0 {
		return model.Plan{}, errEmptyGeneration
	}

	var draft generatedPlan
	if err := json.Unmarshal([]byte(resp.Texts[0]), &draft); err != nil {
		return model.Plan{}, err
	}

	return s.acceptDraft(draft, candidates, availableMinutes)
}

// acceptDraft validates the generated structure against the schema and
// the evidence invariant: every item must reference an evidenced
// candidate and fit the time budget.
func (s *Synthesizer) acceptDraft(draft generatedPlan, candidates []model.EvidencedCandidate, availableMinutes int) (model.Plan, error) {
	if len(draft.Items) < 1 || len(draft.Items) > MaxPlanItems {
		return model.Plan{}, errMalformedPlan
	}

	byID := make(map[types.ContentID]model.EvidencedCandidate, len(candidates))
	for _, c := range candidates {
		byID[c.ContentID] = c
	}

	day := draft.Day
	if day == "" {
		day = "today"
	}

	items := make([]model.PlanItem, 0, len(draft.Items))
	for _, it := range draft.Items {
		cand, ok := byID[types.ContentID(it.ContentID)]
		if !ok {
			return model.Plan{}, errUnknownContent
		}
		item, ok2 := s.lib.Get(cand.ContentID)
		if !ok2 {
			return model.Plan{}, errUnknownContent
		}
		if it.DurationMinutes < 1 || it.DurationMinutes > availableMinutes {
			return model.Plan{}, errMalformedPlan
		}
		if it.WhyItHelps == "" || it.Instructions == "" {
			return model.Plan{}, errMalformedPlan
		}

		items = append(items, model.PlanItem{
			ContentID:       cand.ContentID,
			Title:           item.Title,
			DurationMinutes: it.DurationMinutes,
			WhyItHelps:      it.WhyItHelps,
			Instructions:    it.Instructions,
			Citation:        cand.Citation.Source,
			CitationURL:     cand.Citation.URL,
		})
	}

	return model.Plan{Day: day, Items: items}, nil
}

// Fallback is the deterministic path: the top candidates by rank,
// constructed mechanically from content fields. Pure, no external
// calls, always succeeds. With zero candidates it yields the safe
// default item so a plan is always returned.
func (s *Synthesizer) Fallback(candidates []model.EvidencedCandidate, availableMinutes int) model.Plan {
	if availableMinutes < 1 {
		availableMinutes = 1
	}

	items := make([]model.PlanItem, 0, MaxPlanItems)
	remaining := availableMinutes

	for _, cand := range candidates {
		if len(items) == MaxPlanItems {
			break
		}
		item, ok := s.lib.Get(cand.ContentID)
		if !ok {
			continue
		}
		duration := fitDuration(item, remaining)
		if duration == 0 {
			continue
		}

		items = append(items, model.PlanItem{
			ContentID:       item.ID,
			Title:           item.Title,
			DurationMinutes: duration,
			WhyItHelps:      cand.Rationale,
			Instructions:    item.Instructions,
			Citation:        cand.Citation.Source,
			CitationURL:     cand.Citation.URL,
		})
		remaining -= duration
	}

	if len(items) == 0 {
		items = append(items, s.SafeDefaultItem(availableMinutes))
	}

	return model.Plan{Day: "today", Items: items}
}

// SafeDefaultItem builds the constant, library-backed fallback item
// sized to the time budget.
func (s *Synthesizer) SafeDefaultItem(availableMinutes int) model.PlanItem {
	item := s.lib.SafeDefault()

	duration := item.DurationMinutes
	if duration > availableMinutes {
		duration = availableMinutes
	}
	min := item.MinMinutes
	if min < 1 {
		min = 1
	}
	if duration < min {
		duration = min
	}

	var citation model.Citation
	if item.Evidenced() {
		citation = item.Citations[0]
	}

	return model.PlanItem{
		ContentID:       item.ID,
		Title:           item.Title,
		DurationMinutes: duration,
		WhyItHelps:      "A simple, safe, time-bound reset. " + item.Summary,
		Instructions:    item.Instructions,
		Citation:        citation.Source,
		CitationURL:     citation.URL,
	}
}

// fitDuration picks the largest preferred slot that fits both the item
// and the remaining budget, clamped to the item's variable-length floor.
func fitDuration(item model.ContentItem, remaining int) int {
	if remaining < 1 {
		return 0
	}

	max := item.DurationMinutes
	if max > remaining {
		if item.MinMinutes > 0 && item.MinMinutes <= remaining {
			max = remaining
		} else {
			return 0
		}
	}

	best := 0
	for _, slot := range durationSlots {
		if slot <= max {
			best = slot
		}
	}
	if best == 0 {
		best = max
	}
	return best
}
