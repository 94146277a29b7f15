package interfaces

import (
	"context"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// StepRepository persists the per-session audit trail
type StepRepository interface {
	// Append stores one step record. Records are never mutated after write.
	Append(ctx context.Context, rec *model.StepRecord) error

	// ListBySession retrieves all step records of a session ordered by
	// start time ascending.
	ListBySession(ctx context.Context, sessionID types.SessionID) ([]*model.StepRecord, error)
}
