package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

type stepRepository struct {
	mu      sync.RWMutex
	records map[types.SessionID][]*model.StepRecord
}

func newStepRepository() *stepRepository {
	return &stepRepository{
		records: make(map[types.SessionID][]*model.StepRecord),
	}
}

func copyStepRecord(rec *model.StepRecord) *model.StepRecord {
	copied := &model.StepRecord{
		SessionID: rec.SessionID,
		Step:      rec.Step,
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
	}
	if rec.Input != nil {
		copied.Input = append([]byte(nil), rec.Input...)
	}
	if rec.Output != nil {
		copied.Output = append([]byte(nil), rec.Output...)
	}
	if rec.Metadata != nil {
		copied.Metadata = make(map[string]string, len(rec.Metadata))
		for k, v := range rec.Metadata {
			copied.Metadata[k] = v
		}
	}
	return copied
}

func (r *stepRepository) Append(ctx context.Context, rec *model.StepRecord) error {
	if rec == nil {
		return goerr.New("step record is nil")
	}
	if rec.SessionID == "" {
		return goerr.New("session ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.SessionID] = append(r.records[rec.SessionID], copyStepRecord(rec))
	return nil
}

func (r *stepRepository) ListBySession(ctx context.Context, sessionID types.SessionID) ([]*model.StepRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.records[sessionID]
	result := make([]*model.StepRecord, 0, len(stored))
	for _, rec := range stored {
		result = append(result, copyStepRecord(rec))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})

	return result, nil
}
