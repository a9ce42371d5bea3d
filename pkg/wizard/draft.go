package wizard

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// SetField changes one field of the draft. It is the change handler given to the step forms.
func (w *Wizard) SetField(name, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return goerr.Wrap(ErrClosed, "cannot set field")
	}
	return w.draft.SetField(name, value)
}

// Draft returns a copy of the draft
func (w *Wizard) Draft() *model.Risk {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

// Step returns the current step
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// RegenerateRiskID replaces the draft's risk ID with the first free ID of the current year
func (w *Wizard) RegenerateRiskID() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return "", goerr.Wrap(ErrClosed, "cannot generate risk ID")
	}

	avoid := make([]string, 0, len(w.existingIDs))
	for id := range w.existingIDs {
		avoid = append(avoid, id)
	}
	w.draft.RiskID = model.NextRiskID(w.clock().Year(), avoid)
	return w.draft.RiskID, nil
}

// AddTask appends task to the session's task collection. A task without risk ID is
// attached to the draft. Tasks are kept in the session until Save or Submit stores them.
func (w *Wizard) AddTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task == nil {
		return nil, goerr.Wrap(ErrInvalidArgument, "task is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, goerr.Wrap(ErrClosed, "cannot add task")
	}

	added := task.Clone()
	if added.Title == "" {
		return nil, goerr.Wrap(ErrInvalidArgument, "task title is required")
	}
	if added.Status == "" {
		added.Status = types.TaskStatusTodo
	}
	if !added.Status.IsValid() {
		return nil, goerr.Wrap(ErrInvalidArgument, "invalid task status", goerr.V("status", added.Status))
	}
	if added.RiskID == "" {
		added.RiskID = w.draft.RiskID
	}
	if added.ID == "" {
		added.ID = model.NewTaskID()
	}
	w.tasks = append(w.tasks, added)
	w.tasksVersion++
	return added.Clone(), nil
}

// RemoveTask removes the task with id from the session's collection. It reports whether
// the task was found. A task already stored by Save stays in the store.
func (w *Wizard) RemoveTask(id model.TaskID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	for i, task := range w.tasks {
		if task.ID == id {
			w.tasks = append(w.tasks[:i:i], w.tasks[i+1:]...)
			w.tasksVersion++
			return true
		}
	}
	return false
}

// storeTasks saves the session's tasks of riskID that are not stored yet. Tasks of other
// risk IDs stay in the session.
func (w *Wizard) storeTasks(ctx context.Context, riskID string) error {
	if w.taskService == nil {
		return nil
	}

	w.mu.Lock()
	var pending []*model.Task
	for _, task := range w.tasks {
		if _, stored := w.storedTasks[task.ID]; !stored && task.RiskID == riskID {
			pending = append(pending, task.Clone())
		}
	}
	w.mu.Unlock()

	for _, task := range pending {
		if _, err := w.taskService.SaveTask(ctx, task); err != nil {
			return goerr.Wrap(err, "failed to save task",
				goerr.V("task_id", task.ID),
				goerr.V(riskIDKey, riskID))
		}
		w.mu.Lock()
		w.storedTasks[task.ID] = struct{}{}
		w.mu.Unlock()
	}
	return nil
}

// Tasks returns copies of the session's tasks in insertion order
func (w *Wizard) Tasks() []*model.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tasksLocked()
}

func (w *Wizard) tasksLocked() []*model.Task {
	tasks := make([]*model.Task, len(w.tasks))
	for i, task := range w.tasks {
		tasks[i] = task.Clone()
	}
	return tasks
}
