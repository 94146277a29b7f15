package memory

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/eudai-lab/eudaimon/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Memory is the in-process repository. It backs tests, the one-shot CLI
// mode, and local development without any Google Cloud project.
type Memory struct {
	steps       *stepRepository
	lifeQuality *lifeQualityRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		steps:       newStepRepository(),
		lifeQuality: newLifeQualityRepository(),
	}
}

func (m *Memory) Steps() interfaces.StepRepository {
	return m.steps
}

func (m *Memory) LifeQuality() interfaces.LifeQualityRepository {
	return m.lifeQuality
}

func (m *Memory) Close() error {
	return nil
}
