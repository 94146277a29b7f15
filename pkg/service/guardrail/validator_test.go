package guardrail_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/service/guardrail"
)

func library(t *testing.T) *content.Library {
	t.Helper()
	lib, err := content.Default()
	gt.NoError(t, err).Required()
	return lib
}

func TestValidateBudget(t *testing.T) {
	lib := library(t)
	v := guardrail.New(lib)
	ctx := context.Background()

	t.Run("within budget unchanged", func(t *testing.T) {
		plan := model.Plan{Day: "today", Items: []model.PlanItem{
			{ContentID: "breathing-reset", Title: "Breathing reset", DurationMinutes: 5, WhyItHelps: "calms", Instructions: "breathe slowly"},
		}}

		out := v.Validate(ctx, plan, 30)
		gt.Array(t, out.Items).Length(1)
		gt.Value(t, out.Items[0].DurationMinutes).Equal(5)
		gt.Value(t, out.Caution).Equal("")
	})

	t.Run("shrinks last item to fit", func(t *testing.T) {
		// walk-reset has a 5 minute floor, so 10 can shrink to 7
		plan := model.Plan{Day: "today", Items: []model.PlanItem{
			{ContentID: "breathing-reset", Title: "Breathing reset", DurationMinutes: 5, WhyItHelps: "calms", Instructions: "breathe slowly"},
			{ContentID: "walk-reset", Title: "Walk reset", DurationMinutes: 10, WhyItHelps: "moves", Instructions: "walk around the block"},
		}}

		out := v.Validate(ctx, plan, 12)
		gt.Array(t, out.Items).Length(2).Required()
		gt.Value(t, out.Items[1].DurationMinutes).Equal(7)
		gt.Value(t, out.TotalMinutes()).Equal(12)
	})

	t.Run("drops last item when it cannot shrink", func(t *testing.T) {
		plan := model.Plan{Day: "today", Items: []model.PlanItem{
			{ContentID: "breathing-reset", Title: "Breathing reset", DurationMinutes: 5, WhyItHelps: "calms", Instructions: "breathe slowly"},
			{ContentID: "walk-reset", Title: "Walk reset", DurationMinutes: 10, WhyItHelps: "moves", Instructions: "walk around the block"},
		}}

		out := v.Validate(ctx, plan, 6)
		gt.Array(t, out.Items).Length(1).Required()
		gt.Value(t, out.Items[0].ContentID).Equal(types.ContentID("breathing-reset"))
	})
}

func TestValidateMinimumDuration(t *testing.T) {
	lib := library(t)
	v := guardrail.New(lib)

	plan := model.Plan{Day: "today", Items: []model.PlanItem{
		{ContentID: "breathing-reset", Title: "Breathing reset", DurationMinutes: 0, WhyItHelps: "calms", Instructions: "breathe slowly"},
	}}

	out := v.Validate(context.Background(), plan, 30)

	// The zero-minute item is dropped and the empty plan is repaired
	// with the safe default.
	gt.Array(t, out.Items).Length(1).Required()
	gt.Value(t, out.Items[0].ContentID).Equal(content.SafeDefaultID)
	gt.Value(t, out.Caution).Equal(guardrail.Caution)
}

func TestValidateDisallowedContent(t *testing.T) {
	lib := library(t)
	v := guardrail.New(lib)

	plan := model.Plan{Day: "today", Items: []model.PlanItem{
		{ContentID: "walk-reset", Title: "Walk reset", DurationMinutes: 10, WhyItHelps: "moves", Instructions: "try an ice bath afterwards"},
	}}

	out := v.Validate(context.Background(), plan, 30)
	gt.Array(t, out.Items).Length(1).Required()
	gt.Value(t, out.Items[0].ContentID).Equal(content.SafeDefaultID)
	gt.Value(t, out.Caution).Equal(guardrail.Caution)
}

func TestValidateReplacementKeepsBudget(t *testing.T) {
	lib := library(t)
	v := guardrail.New(lib)
	ctx := context.Background()

	t.Run("replacing a short item never overruns a full budget", func(t *testing.T) {
		// 29 + 1 fills the budget exactly; the flagged one-minute item
		// must not come back longer than what it replaced.
		plan := model.Plan{Day: "today", Items: []model.PlanItem{
			{ContentID: "wind-down-routine", Title: "Screens-Off Wind-Down", DurationMinutes: 29, WhyItHelps: "settles", Instructions: "dim the lights"},
			{ContentID: "walk-reset", Title: "Walk reset", DurationMinutes: 1, WhyItHelps: "x", Instructions: "take a supplement first"},
		}}

		out := v.Validate(ctx, plan, 30)
		gt.Value(t, out.Caution).Equal(guardrail.Caution)
		gt.Bool(t, out.TotalMinutes() <= 30).True()

		gt.Array(t, out.Items).Length(2).Required()
		gt.Value(t, out.Items[1].ContentID).Equal(content.SafeDefaultID)
		gt.Value(t, out.Items[1].DurationMinutes).Equal(1)
	})

	t.Run("budget below the safe default floor", func(t *testing.T) {
		plan := model.Plan{Day: "today", Items: []model.PlanItem{
			{ContentID: "walk-reset", Title: "Walk reset", DurationMinutes: 1, WhyItHelps: "x", Instructions: "try an ice bath"},
		}}

		out := v.Validate(ctx, plan, 1)
		gt.Array(t, out.Items).Length(1).Required()
		gt.Value(t, out.Items[0].ContentID).Equal(content.SafeDefaultID)
		gt.Value(t, out.Items[0].DurationMinutes).Equal(1)
		gt.Value(t, out.TotalMinutes()).Equal(1)
	})

	t.Run("empty plan repair honors a one-minute budget", func(t *testing.T) {
		out := v.Validate(ctx, model.Plan{Day: "today"}, 1)
		gt.Array(t, out.Items).Length(1).Required()
		gt.Value(t, out.Items[0].DurationMinutes).Equal(1)
	})
}

func TestValidateCollapsesDuplicateReplacements(t *testing.T) {
	lib := library(t)
	v := guardrail.New(lib)

	plan := model.Plan{Day: "today", Items: []model.PlanItem{
		{ContentID: "walk-reset", Title: "Walk reset", DurationMinutes: 5, WhyItHelps: "x", Instructions: "take a supplement first"},
		{ContentID: "desk-stretch", Title: "Desk stretch", DurationMinutes: 5, WhyItHelps: "x", Instructions: "consider fasting today"},
	}}

	out := v.Validate(context.Background(), plan, 30)
	gt.Array(t, out.Items).Length(1).Required()
	gt.Value(t, out.Items[0].ContentID).Equal(content.SafeDefaultID)
	gt.Value(t, out.Caution).Equal(guardrail.Caution)
}

func TestValidateEmptyPlan(t *testing.T) {
	lib := library(t)
	v := guardrail.New(lib)

	out := v.Validate(context.Background(), model.Plan{Day: "today"}, 15)
	gt.Array(t, out.Items).Length(1).Required()
	gt.Value(t, out.Items[0].ContentID).Equal(content.SafeDefaultID)
	gt.Bool(t, out.Items[0].DurationMinutes >= 1).True()
	gt.Value(t, out.Caution).Equal(guardrail.Caution)
}
