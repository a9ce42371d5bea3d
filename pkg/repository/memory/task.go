package memory

import (
	"context"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type taskRepository struct {
	tasks *table[model.Task]
}

func newTaskRepository() *taskRepository {
	return &taskRepository{
		tasks: newTable("task", (*model.Task).Clone),
	}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now().UTC()
	created := task.Clone()
	if created.ID == "" {
		created.ID = model.NewTaskID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	return r.tasks.insert(created.ID.String(), created)
}

func (r *taskRepository) Get(ctx context.Context, id model.TaskID) (*model.Task, error) {
	return r.tasks.get(id.String())
}

func (r *taskRepository) List(ctx context.Context) ([]*model.Task, error) {
	return r.tasks.list(nil), nil
}

func (r *taskRepository) ListByRisk(ctx context.Context, riskID string) ([]*model.Task, error) {
	return r.tasks.list(func(t *model.Task) bool {
		return t.RiskID == riskID
	}), nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	return r.tasks.update(task.ID.String(), task, func(existing, updated *model.Task) {
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
	})
}

func (r *taskRepository) Delete(ctx context.Context, id model.TaskID) error {
	return r.tasks.delete(id.String())
}
