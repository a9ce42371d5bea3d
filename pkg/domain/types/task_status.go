package types

import "github.com/m-mizutani/goerr/v2"

// TaskStatus represents the progress of a remediation task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// AllTaskStatuses returns all valid task statuses
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusTodo,
		TaskStatusInProgress,
		TaskStatusBlocked,
		TaskStatusCompleted,
	}
}

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo,
		TaskStatusInProgress,
		TaskStatusBlocked,
		TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus parses a string into a TaskStatus. An empty string yields TaskStatusTodo.
func ParseTaskStatus(s string) (TaskStatus, error) {
	if s == "" {
		return TaskStatusTodo, nil
	}
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid task status", goerr.V("status", s))
	}
	return status, nil
}
