package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/utils/async"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// recordStep persists one audit trail entry. Persistence is
// fire-and-forget: a failing repository slows nothing and fails nothing
// in the user-visible path. Snapshots pass through the redactor before
// they leave the process.
func (uc *UseCases) recordStep(ctx context.Context, sessionID types.SessionID, step types.StepName, startedAt time.Time, input, output any) {
	rec := &model.StepRecord{
		SessionID: sessionID,
		Step:      step,
		Input:     uc.snapshot(ctx, input),
		Output:    uc.snapshot(ctx, output),
		StartedAt: startedAt,
		EndedAt:   uc.now(),
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.repo.Steps().Append(ctx, rec)
	})
}

// snapshot marshals a step payload and redacts it. A marshal failure
// produces an explicit marker instead of dropping the record.
func (uc *UseCases) snapshot(ctx context.Context, v any) json.RawMessage {
	if v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		logging.From(ctx).Warn("failed to marshal step snapshot", "error", err.Error())
		return json.RawMessage(`{"error":"unserializable snapshot"}`)
	}

	return json.RawMessage(uc.redactor.Redact(string(raw)))
}
