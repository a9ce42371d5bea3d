package memory

import (
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is a volatile repository for development and tests
type Memory struct {
	risk     *riskRepository
	task     *taskRepository
	document *documentRepository
	control  *controlRepository
	soa      *soaRepository
	gap      *gapRepository
	user     *userRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:     newRiskRepository(),
		task:     newTaskRepository(),
		document: newDocumentRepository(),
		control:  newControlRepository(),
		soa:      newSoARepository(),
		gap:      newGapRepository(),
		user:     newUserRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Control() interfaces.ControlRepository {
	return m.control
}

func (m *Memory) SoA() interfaces.SoARepository {
	return m.soa
}

func (m *Memory) Gap() interfaces.GapRepository {
	return m.gap
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
