package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

type lifeQualityRepository struct {
	mu      sync.Mutex
	userMu  map[types.UserID]*sync.Mutex
	records map[types.UserID][]*model.LifeQualityRecord
}

func newLifeQualityRepository() *lifeQualityRepository {
	return &lifeQualityRepository{
		userMu:  make(map[types.UserID]*sync.Mutex),
		records: make(map[types.UserID][]*model.LifeQualityRecord),
	}
}

// lockUser returns the per-user mutex, creating it on first use. The
// caller must unlock it.
func (r *lifeQualityRepository) lockUser(userID types.UserID) *sync.Mutex {
	r.mu.Lock()
	mu, ok := r.userMu[userID]
	if !ok {
		mu = &sync.Mutex{}
		r.userMu[userID] = mu
	}
	r.mu.Unlock()

	mu.Lock()
	return mu
}

func copyLifeQualityRecord(rec *model.LifeQualityRecord) *model.LifeQualityRecord {
	copied := *rec
	return &copied
}

func (r *lifeQualityRepository) AppendWith(ctx context.Context, userID types.UserID, build interfaces.BuildRecordFunc) (*model.LifeQualityRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	mu := r.lockUser(userID)
	defer mu.Unlock()

	var prior *model.LifeQualityRecord
	r.mu.Lock()
	history := r.records[userID]
	if len(history) > 0 {
		prior = copyLifeQualityRecord(history[len(history)-1])
	}
	r.mu.Unlock()

	rec, err := build(prior)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, goerr.New("build returned nil record", goerr.V("user_id", userID))
	}

	stored := copyLifeQualityRecord(rec)
	r.mu.Lock()
	r.records[userID] = append(r.records[userID], stored)
	r.mu.Unlock()

	return copyLifeQualityRecord(stored), nil
}

func (r *lifeQualityRepository) GetRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.LifeQualityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.records[userID]
	if limit > 0 && limit < len(history) {
		history = history[len(history)-limit:]
	}

	result := make([]*model.LifeQualityRecord, 0, len(history))
	for _, rec := range history {
		result = append(result, copyLifeQualityRecord(rec))
	}
	return result, nil
}

func (r *lifeQualityRepository) GetStreak(ctx context.Context, userID types.UserID, window time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.records[userID]
	if len(history) == 0 {
		return 0, nil
	}

	streak := 1
	for i := len(history) - 1; i > 0; i-- {
		gap := history[i].CreatedAt.Sub(history[i-1].CreatedAt)
		if gap > window {
			break
		}
		streak++
	}

	return streak, nil
}
