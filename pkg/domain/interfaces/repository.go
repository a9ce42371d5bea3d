package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Task() TaskRepository
	Document() DocumentRepository
	Control() ControlRepository
	SoA() SoARepository
	Gap() GapRepository
	User() UserRepository

	Close() error
}
