package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

func TestTaskUseCase(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCases(t)

	_, err := uc.Risk.SaveRisk(ctx, &model.Risk{RiskID: "RR-2025-001"})
	gt.NoError(t, err).Required()

	t.Run("create defaults status to TODO", func(t *testing.T) {
		task, err := uc.Task.CreateTask(ctx, &model.Task{RiskID: "RR-2025-001", Title: "rotate keys"})
		gt.NoError(t, err).Required()
		gt.Value(t, task.Status).Equal(types.TaskStatusTodo)
		gt.Value(t, task.ID).NotEqual(model.TaskID(""))
	})

	t.Run("title is required", func(t *testing.T) {
		_, err := uc.Task.CreateTask(ctx, &model.Task{RiskID: "RR-2025-001"})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("risk must exist", func(t *testing.T) {
		_, err := uc.Task.CreateTask(ctx, &model.Task{RiskID: "RR-2025-404", Title: "x"})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := uc.Task.CreateTask(ctx, &model.Task{RiskID: "RR-2025-001", Title: "x", Status: "DONE"})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("update and filter by risk", func(t *testing.T) {
		task, err := uc.Task.CreateTask(ctx, &model.Task{RiskID: "RR-2025-001", Title: "audit"})
		gt.NoError(t, err).Required()

		task.Status = types.TaskStatusCompleted
		updated, err := uc.Task.UpdateTask(ctx, task)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.TaskStatusCompleted)

		tasks, err := uc.Task.ListTasks(ctx, "RR-2025-001")
		gt.NoError(t, err).Required()
		gt.Bool(t, len(tasks) >= 2).True()

		none, err := uc.Task.ListTasks(ctx, "RR-2025-999")
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})

	t.Run("delete", func(t *testing.T) {
		task, err := uc.Task.CreateTask(ctx, &model.Task{RiskID: "RR-2025-001", Title: "tmp"})
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Task.DeleteTask(ctx, task.ID)).Required()
		_, err = uc.Task.GetTask(ctx, task.ID)
		gt.Error(t, err).Is(usecase.ErrNotFound)
	})
}
