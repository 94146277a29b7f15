package repository_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/repository/firestore"
	"github.com/eudai-lab/eudaimon/pkg/repository/memory"
)

func runStepRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	step := func(sessionID types.SessionID, name types.StepName, startedAt time.Time) *model.StepRecord {
		return &model.StepRecord{
			SessionID: sessionID,
			Step:      name,
			Input:     json.RawMessage(`{"text":"in"}`),
			Output:    json.RawMessage(`{"text":"out"}`),
			StartedAt: startedAt,
			EndedAt:   startedAt.Add(time.Second),
		}
	}

	t.Run("ListBySession orders by start time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		sessionID := types.NewSessionID()
		base := time.Now().Truncate(time.Millisecond)

		// Append out of order on purpose
		gt.NoError(t, repo.Steps().Append(ctx, step(sessionID, types.StepRetrieval, base.Add(time.Second)))).Required()
		gt.NoError(t, repo.Steps().Append(ctx, step(sessionID, types.StepReflection, base))).Required()
		gt.NoError(t, repo.Steps().Append(ctx, step(sessionID, types.StepPlan, base.Add(2*time.Second)))).Required()

		records, err := repo.Steps().ListBySession(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(3).Required()

		gt.Value(t, records[0].Step).Equal(types.StepReflection)
		gt.Value(t, records[1].Step).Equal(types.StepRetrieval)
		gt.Value(t, records[2].Step).Equal(types.StepPlan)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		first := types.NewSessionID()
		second := types.NewSessionID()

		gt.NoError(t, repo.Steps().Append(ctx, step(first, types.StepReflection, time.Now()))).Required()

		records, err := repo.Steps().ListBySession(ctx, second)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(0)
	})

	t.Run("Append rejects invalid records", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.Value(t, repo.Steps().Append(ctx, nil)).NotNil()
		gt.Value(t, repo.Steps().Append(ctx, step("", types.StepReflection, time.Now()))).NotNil()
	})
}

func runLifeQualityRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const userID types.UserID = "user-1"

	record := func(score float64, createdAt time.Time) *model.LifeQualityRecord {
		return &model.LifeQualityRecord{
			SessionID: types.NewSessionID(),
			UserID:    userID,
			Score:     score,
			Trend:     types.TrendSteady,
			CreatedAt: createdAt,
		}
	}

	addScore := func(t *testing.T, repo interfaces.Repository, score float64, createdAt time.Time) {
		t.Helper()
		_, err := repo.LifeQuality().AppendWith(context.Background(), userID, func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error) {
			return record(score, createdAt), nil
		})
		gt.NoError(t, err).Required()
	}

	t.Run("AppendWith exposes the prior record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.LifeQuality().AppendWith(ctx, userID, func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error) {
			gt.Value(t, prior).Nil()
			return record(50, time.Now()), nil
		})
		gt.NoError(t, err).Required()

		_, err = repo.LifeQuality().AppendWith(ctx, userID, func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error) {
			gt.Value(t, prior).NotNil()
			gt.Value(t, prior.Score).Equal(50.0)
			return record(55, time.Now()), nil
		})
		gt.NoError(t, err).Required()
	})

	t.Run("AppendWith requires a user ID", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.LifeQuality().AppendWith(context.Background(), "", func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error) {
			return record(50, time.Now()), nil
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("GetRecent returns most recent last", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

		addScore(t, repo, 40, base)
		addScore(t, repo, 45, base.Add(10*time.Minute))
		addScore(t, repo, 50, base.Add(20*time.Minute))

		recent, err := repo.LifeQuality().GetRecent(context.Background(), userID, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, recent).Length(2).Required()
		gt.Value(t, recent[0].Score).Equal(45.0)
		gt.Value(t, recent[1].Score).Equal(50.0)
	})

	t.Run("GetStreak counts within the window", func(t *testing.T) {
		repo := newRepo(t)
		now := time.Now().Truncate(time.Millisecond)

		// 50h gap breaks the chain, the two recent sessions survive
		addScore(t, repo, 40, now.Add(-60*time.Hour))
		addScore(t, repo, 45, now.Add(-10*time.Hour))
		addScore(t, repo, 50, now)

		streak, err := repo.LifeQuality().GetStreak(context.Background(), userID, 36*time.Hour)
		gt.NoError(t, err).Required()
		gt.Value(t, streak).Equal(2)
	})

	t.Run("GetStreak is zero without history", func(t *testing.T) {
		repo := newRepo(t)

		streak, err := repo.LifeQuality().GetStreak(context.Background(), userID, 36*time.Hour)
		gt.NoError(t, err).Required()
		gt.Value(t, streak).Equal(0)
	})

	t.Run("concurrent appends are serialized per user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const writers = 8
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.LifeQuality().AppendWith(ctx, userID, func(prior *model.LifeQualityRecord) (*model.LifeQualityRecord, error) {
					next := 1.0
					if prior != nil {
						next = prior.Score + 1
					}
					return record(next, time.Now()), nil
				})
				gt.NoError(t, err)
			}()
		}
		wg.Wait()

		recent, err := repo.LifeQuality().GetRecent(ctx, userID, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, recent).Length(writers).Required()

		// Every writer saw the latest score, so the chain is unbroken.
		gt.Value(t, recent[len(recent)-1].Score).Equal(float64(writers))
	})
}

func TestStepRepository_Memory(t *testing.T) {
	runStepRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestLifeQualityRepository_Memory(t *testing.T) {
	runLifeQualityRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("FIRESTORE_DATABASE_ID")

	repo, err := firestore.New(context.Background(), projectID, databaseID,
		firestore.WithCollectionPrefix("test-"+time.Now().Format("20060102-150405")+"-"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestStepRepository_Firestore(t *testing.T) {
	runStepRepositoryTest(t, newFirestoreRepo)
}

func TestLifeQualityRepository_Firestore(t *testing.T) {
	runLifeQualityRepositoryTest(t, newFirestoreRepo)
}
