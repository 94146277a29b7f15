package interfaces

import (
	"context"
	"time"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// BuildRecordFunc computes the next life quality record from the most
// recent one (nil when no history exists). It runs inside the store's
// per-user critical section so the prior record can never be stale.
type BuildRecordFunc func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error)

// LifeQualityRepository persists the append-only per-user trend history.
// Implementations must serialize AppendWith per user ID: two concurrent
// sessions for the same user must observe each other's appends.
type LifeQualityRepository interface {
	// AppendWith runs build under the per-user critical section and
	// appends the record it returns.
	AppendWith(ctx context.Context, userID types.UserID, build BuildRecordFunc) (*model.LifeQualityRecord, error)

	// GetRecent returns up to limit records for the user, most recent last
	GetRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.LifeQualityRecord, error)

	// GetStreak counts consecutive sessions, ending at the most recent
	// record, whose gaps never exceed window.
	GetStreak(ctx context.Context, userID types.UserID, window time.Duration) (int, error)
}
