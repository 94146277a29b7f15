package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Firestore is the Google Cloud backed repository
type Firestore struct {
	client      *firestore.Client
	steps       *stepRepository
	lifeQuality *lifeQualityRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used to isolate
// environments sharing one project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.steps.collectionPrefix = prefix
		f.lifeQuality.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:      client,
		steps:       newStepRepository(client),
		lifeQuality: newLifeQualityRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Steps() interfaces.StepRepository {
	return f.steps
}

func (f *Firestore) LifeQuality() interfaces.LifeQualityRepository {
	return f.lifeQuality
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
