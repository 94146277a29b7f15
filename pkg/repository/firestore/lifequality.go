package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

type lifeQualityDoc struct {
	SessionID types.SessionID `firestore:"SessionID"`
	UserID    types.UserID    `firestore:"UserID"`
	Score     float64         `firestore:"Score"`
	Trend     string          `firestore:"Trend"`
	CreatedAt time.Time       `firestore:"CreatedAt"`
}

func toLifeQualityDoc(rec *model.LifeQualityRecord) *lifeQualityDoc {
	return &lifeQualityDoc{
		SessionID: rec.SessionID,
		UserID:    rec.UserID,
		Score:     rec.Score,
		Trend:     string(rec.Trend),
		CreatedAt: rec.CreatedAt,
	}
}

func fromLifeQualityDoc(d *lifeQualityDoc) *model.LifeQualityRecord {
	return &model.LifeQualityRecord{
		SessionID: d.SessionID,
		UserID:    d.UserID,
		Score:     d.Score,
		Trend:     types.TrendLabel(d.Trend),
		CreatedAt: d.CreatedAt,
	}
}

type lifeQualityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newLifeQualityRepository(client *firestore.Client) *lifeQualityRepository {
	return &lifeQualityRepository{client: client}
}

// collection returns the subcollection path:
// users/{userID}/lifequality
func (r *lifeQualityRepository) collection(userID types.UserID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix+"users").Doc(userID.String()).
		Collection("lifequality")
}

// AppendWith reads the latest record and appends the built one inside a
// single transaction, so concurrent sessions for the same user observe
// each other's appends.
func (r *lifeQualityRepository) AppendWith(ctx context.Context, userID types.UserID, build interfaces.BuildRecordFunc) (*model.LifeQualityRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	var appended *model.LifeQualityRecord
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(r.collection(userID).
			OrderBy("CreatedAt", firestore.Desc).
			Limit(1))
		defer iter.Stop()

		var prior *model.LifeQualityRecord
		doc, err := iter.Next()
		if err != nil && err != iterator.Done {
			return goerr.Wrap(err, "failed to read latest life quality record")
		}
		if err == nil {
			var d lifeQualityDoc
			if err := doc.DataTo(&d); err != nil {
				return goerr.Wrap(err, "failed to unmarshal life quality record")
			}
			prior = fromLifeQualityDoc(&d)
		}

		rec, err := build(prior)
		if err != nil {
			return err
		}
		if rec == nil {
			return goerr.New("build returned nil record", goerr.V("user_id", userID))
		}

		if err := tx.Create(r.collection(userID).NewDoc(), toLifeQualityDoc(rec)); err != nil {
			return goerr.Wrap(err, "failed to append life quality record")
		}

		appended = rec
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "life quality append transaction failed", goerr.V("user_id", userID))
	}

	return appended, nil
}

// GetRecent returns up to limit records, most recent last
func (r *lifeQualityRepository) GetRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.LifeQualityRecord, error) {
	q := r.collection(userID).OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	descending := make([]*model.LifeQualityRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate life quality records", goerr.V("user_id", userID))
		}

		var d lifeQualityDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal life quality record", goerr.V("user_id", userID))
		}
		descending = append(descending, fromLifeQualityDoc(&d))
	}

	// Reverse to most-recent-last
	result := make([]*model.LifeQualityRecord, len(descending))
	for i, rec := range descending {
		result[len(descending)-1-i] = rec
	}
	return result, nil
}

// GetStreak walks the history backwards counting sessions whose gaps
// never exceed window.
func (r *lifeQualityRepository) GetStreak(ctx context.Context, userID types.UserID, window time.Duration) (int, error) {
	iter := r.collection(userID).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	streak := 0
	var newer *time.Time
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate life quality records", goerr.V("user_id", userID))
		}

		var d lifeQualityDoc
		if err := doc.DataTo(&d); err != nil {
			return 0, goerr.Wrap(err, "failed to unmarshal life quality record", goerr.V("user_id", userID))
		}

		if newer != nil && newer.Sub(d.CreatedAt) > window {
			break
		}
		streak++
		createdAt := d.CreatedAt
		newer = &createdAt
	}

	return streak, nil
}
