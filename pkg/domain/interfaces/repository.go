package interfaces

// Repository defines the interface for data persistence. The core
// contract is append-only: records are never updated nor deleted.
type Repository interface {
	Steps() StepRepository
	LifeQuality() LifeQualityRepository

	Close() error
}
