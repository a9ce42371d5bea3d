package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type TaskUseCase struct {
	repo interfaces.Repository
}

func NewTaskUseCase(repo interfaces.Repository) *TaskUseCase {
	return &TaskUseCase{repo: repo}
}

// ListTasks returns the tasks of riskID, or every task when riskID is empty
func (uc *TaskUseCase) ListTasks(ctx context.Context, riskID string) ([]*model.Task, error) {
	if riskID == "" {
		tasks, err := uc.repo.Task().List(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list tasks")
		}
		return tasks, nil
	}

	tasks, err := uc.repo.Task().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V(RiskIDKey, riskID))
	}
	return tasks, nil
}

func (uc *TaskUseCase) GetTask(ctx context.Context, id model.TaskID) (*model.Task, error) {
	task, err := uc.repo.Task().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(TaskIDKey, id))
	}
	return task, nil
}

func (uc *TaskUseCase) validate(ctx context.Context, task *model.Task) error {
	if task.Title == "" {
		return goerr.Wrap(ErrValidation, "task title is required")
	}
	if task.RiskID == "" {
		return goerr.Wrap(ErrValidation, "task risk ID is required")
	}
	if !task.Status.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid task status", goerr.V("status", task.Status))
	}

	if _, err := uc.repo.Risk().Get(ctx, task.RiskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return goerr.Wrap(ErrValidation, "risk of task does not exist", goerr.V(RiskIDKey, task.RiskID))
		}
		return goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, task.RiskID))
	}
	return nil
}

func (uc *TaskUseCase) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task == nil {
		return nil, goerr.Wrap(ErrValidation, "task is required")
	}
	creating := task.Clone()
	if creating.Status == "" {
		creating.Status = types.TaskStatusTodo
	}
	if err := uc.validate(ctx, creating); err != nil {
		return nil, err
	}

	created, err := uc.repo.Task().Create(ctx, creating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create task", goerr.V(RiskIDKey, creating.RiskID))
	}
	return created, nil
}

// SaveTask persists a task added in the wizard
func (uc *TaskUseCase) SaveTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	return uc.CreateTask(ctx, task)
}

func (uc *TaskUseCase) UpdateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task == nil || task.ID == "" {
		return nil, goerr.Wrap(ErrValidation, "task ID is required")
	}
	updating := task.Clone()
	if updating.Status == "" {
		updating.Status = types.TaskStatusTodo
	}
	if err := uc.validate(ctx, updating); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Task().Update(ctx, updating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update task", goerr.V(TaskIDKey, task.ID))
	}
	return updated, nil
}

func (uc *TaskUseCase) DeleteTask(ctx context.Context, id model.TaskID) error {
	if err := uc.repo.Task().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete task", goerr.V(TaskIDKey, id))
	}
	return nil
}
