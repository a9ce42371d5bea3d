package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// TaskID is the identifier of a remediation task
type TaskID string

func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

func (id TaskID) String() string {
	return string(id)
}

// Task is a remediation action attached to a risk by its risk ID
type Task struct {
	ID          TaskID           `json:"id"`
	RiskID      string           `json:"riskId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Assignee    string           `json:"assignee"`
	Status      types.TaskStatus `json:"status"`
	DueDate     string           `json:"dueDate"`
	CreatedAt   time.Time        `json:"createdAt,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt,omitempty"`
}

func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
