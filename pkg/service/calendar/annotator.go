package calendar

import (
	"context"
	"time"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// itemGap separates consecutive suggested windows
const itemGap = 5 * time.Minute

// timeOfDayHour maps a stated preference to the earliest hour a window
// may start. Unknown values fall back to "now".
var timeOfDayHour = map[string]int{
	"morning": 8,
	"lunch":   12,
	"evening": 18,
}

// Annotate attaches suggested time windows to the plan items. Windows
// start at the next quarter hour on or after the anchor, run for the
// item's duration, and are separated by a five minute gap. Pure given
// now; an unknown timezone degrades to UTC instead of failing.
func Annotate(ctx context.Context, plan model.Plan, tzName, timeOfDay string, now time.Time) model.Plan {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		logging.From(ctx).Warn("unknown timezone, using UTC", "timezone", tzName)
		loc = time.UTC
	}

	cursor := roundUpQuarter(anchor(now.In(loc), timeOfDay))

	// The input plan stays untouched: callers snapshot it as the
	// pre-annotation state.
	items := make([]model.PlanItem, len(plan.Items))
	copy(items, plan.Items)

	for i := range items {
		end := cursor.Add(time.Duration(items[i].DurationMinutes) * time.Minute)
		items[i].Window = &model.TimeWindow{
			Start:    cursor,
			End:      end,
			Timezone: loc.String(),
		}
		cursor = roundUpQuarter(end.Add(itemGap))
	}

	plan.Items = items
	return plan
}

// anchor picks the starting point: the preferred time of day when it is
// still ahead of now, otherwise now.
func anchor(now time.Time, timeOfDay string) time.Time {
	hour, ok := timeOfDayHour[timeOfDay]
	if !ok {
		return now
	}

	preferred := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if preferred.After(now) {
		return preferred
	}
	return now
}

// roundUpQuarter rounds t up to the next :00, :15, :30 or :45 boundary.
// Times already on a boundary are unchanged.
func roundUpQuarter(t time.Time) time.Time {
	floor := t.Truncate(time.Minute).Add(-time.Duration(t.Minute()%15) * time.Minute)
	if floor.Equal(t) {
		return t
	}
	return floor.Add(15 * time.Minute)
}
