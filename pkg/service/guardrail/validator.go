package guardrail

import (
	"context"
	"strings"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// Caution is attached to the plan whenever an item was replaced for
// safety. The wording is fixed so downstream rendering stays stable.
const Caution = "Part of this plan was adjusted for safety. These are general wellbeing suggestions, not medical advice."

// disallowedKeywords flag content that must never reach a plan, either
// clinical or physically risky without supervision. Matched
// case-insensitively against title and instructions.
var disallowedKeywords = []string{
	"suicide",
	"self-harm",
	"self harm",
	"cure",
	"diagnose",
	"diagnosis",
	"medication",
	"prescription",
	"therapy replacement",
	"fasting",
	"ice bath",
	"supplement",
}

// Validator repairs draft plans in place of rejecting them. Every check
// degrades the plan rather than erroring: the caller always receives a
// valid plan.
type Validator struct {
	lib *content.Library
}

// New creates a Validator over the content library
func New(lib *content.Library) *Validator {
	return &Validator{lib: lib}
}

// Validate enforces the plan invariants: total duration within budget,
// every item at least one minute, no disallowed content, never empty.
// Repairs are logged, not returned as errors.
func (v *Validator) Validate(ctx context.Context, plan model.Plan, availableMinutes int) model.Plan {
	logger := logging.From(ctx)
	if availableMinutes < 1 {
		availableMinutes = 1
	}

	caution := false

	// Sub-minute items cannot be repaired, only removed.
	items := make([]model.PlanItem, 0, len(plan.Items))
	for _, it := range plan.Items {
		if it.DurationMinutes < 1 {
			logger.Warn("dropping sub-minute plan item", "content_id", it.ContentID)
			continue
		}
		items = append(items, it)
	}

	items = v.fitBudget(ctx, items, availableMinutes)

	for i, it := range items {
		if kw := findDisallowed(it); kw != "" {
			logger.Warn("replacing plan item with safe default",
				"content_id", it.ContentID,
				"keyword", kw,
			)
			items[i] = v.safeDefaultItem(minInt(it.DurationMinutes, availableMinutes))
			caution = true
		}
	}

	// A replacement may carry a different duration than the item it
	// replaced, so the budget is re-checked after the keyword pass.
	items = v.fitBudget(ctx, items, availableMinutes)

	items = collapseDuplicates(items)

	if len(items) == 0 {
		logger.Warn("plan empty after validation, inserting safe default")
		items = []model.PlanItem{v.safeDefaultItem(availableMinutes)}
		caution = true
	}

	out := model.Plan{Day: plan.Day, Items: items}
	if caution {
		out.Caution = Caution
	}
	return out
}

// fitBudget trims the plan until the total duration fits: first shrink
// the last item toward its variable-length floor, then drop trailing
// items.
func (v *Validator) fitBudget(ctx context.Context, items []model.PlanItem, availableMinutes int) []model.PlanItem {
	logger := logging.From(ctx)

	for len(items) > 0 {
		total := 0
		for _, it := range items {
			total += it.DurationMinutes
		}
		if total <= availableMinutes {
			return items
		}

		last := len(items) - 1
		excess := total - availableMinutes
		shrunk := items[last].DurationMinutes - excess

		floor := 1
		if item, ok := v.lib.Get(items[last].ContentID); ok && item.MinMinutes > floor {
			floor = item.MinMinutes
		}

		if shrunk >= floor {
			logger.Warn("shrinking plan item to fit time budget",
				"content_id", items[last].ContentID,
				"from", items[last].DurationMinutes,
				"to", shrunk,
			)
			items[last].DurationMinutes = shrunk
			return items
		}

		logger.Warn("dropping plan item to fit time budget", "content_id", items[last].ContentID)
		items = items[:last]
	}

	return items
}

func (v *Validator) safeDefaultItem(availableMinutes int) model.PlanItem {
	item := v.lib.SafeDefault()

	duration := item.DurationMinutes
	if duration > availableMinutes {
		duration = availableMinutes
	}
	floor := item.MinMinutes
	if floor < 1 {
		floor = 1
	}
	if duration < floor {
		duration = floor
	}
	// The budget wins over the item's own floor: one minute is the
	// absolute minimum a plan item may carry.
	if duration > availableMinutes {
		duration = availableMinutes
	}
	if duration < 1 {
		duration = 1
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

func findDisallowed(item model.PlanItem) string {
	text := strings.ToLower(item.Title + " " + item.WhyItHelps + " " + item.Instructions)
	for _, kw := range disallowedKeywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

// collapseDuplicates keeps the first occurrence per content ID, so two
// safety replacements never show the user the same item twice.
func collapseDuplicates(items []model.PlanItem) []model.PlanItem {
	seen := map[string]bool{}
	out := items[:0]
	for _, it := range items {
		if seen[it.ContentID.String()] {
			continue
		}
		seen[it.ContentID.String()] = true
		out = append(out, it)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
