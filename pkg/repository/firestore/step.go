package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

// stepDoc is the Firestore document representation of model.StepRecord.
// Snapshots are stored as strings because Firestore has no raw JSON type.
type stepDoc struct {
	SessionID types.SessionID   `firestore:"SessionID"`
	Step      string            `firestore:"Step"`
	Input     string            `firestore:"Input"`
	Output    string            `firestore:"Output"`
	StartedAt time.Time         `firestore:"StartedAt"`
	EndedAt   time.Time         `firestore:"EndedAt"`
	Metadata  map[string]string `firestore:"Metadata,omitempty"`
}

func toStepDoc(rec *model.StepRecord) *stepDoc {
	return &stepDoc{
		SessionID: rec.SessionID,
		Step:      string(rec.Step),
		Input:     string(rec.Input),
		Output:    string(rec.Output),
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
		Metadata:  rec.Metadata,
	}
}

func fromStepDoc(d *stepDoc) *model.StepRecord {
	rec := &model.StepRecord{
		SessionID: d.SessionID,
		Step:      types.StepName(d.Step),
		StartedAt: d.StartedAt,
		EndedAt:   d.EndedAt,
		Metadata:  d.Metadata,
	}
	if d.Input != "" {
		rec.Input = json.RawMessage(d.Input)
	}
	if d.Output != "" {
		rec.Output = json.RawMessage(d.Output)
	}
	return rec
}

type stepRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newStepRepository(client *firestore.Client) *stepRepository {
	return &stepRepository{client: client}
}

// stepsCollection returns the subcollection path:
// sessions/{sessionID}/steps
func (r *stepRepository) stepsCollection(sessionID types.SessionID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix+"sessions").Doc(sessionID.String()).
		Collection("steps")
}

func (r *stepRepository) Append(ctx context.Context, rec *model.StepRecord) error {
	if rec == nil {
		return goerr.New("step record is nil")
	}
	if rec.SessionID == "" {
		return goerr.New("session ID is required")
	}

	if _, _, err := r.stepsCollection(rec.SessionID).Add(ctx, toStepDoc(rec)); err != nil {
		return goerr.Wrap(err, "failed to append step record",
			goerr.V("session_id", rec.SessionID), goerr.V("step", rec.Step))
	}

	return nil
}

func (r *stepRepository) ListBySession(ctx context.Context, sessionID types.SessionID) ([]*model.StepRecord, error) {
	iter := r.stepsCollection(sessionID).
		OrderBy("StartedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*model.StepRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate step records", goerr.V("session_id", sessionID))
		}

		var d stepDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal step record", goerr.V("session_id", sessionID))
		}

		records = append(records, fromStepDoc(&d))
	}

	return records, nil
}
