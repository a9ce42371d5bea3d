package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestTaskRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("Create assigns ID and timestamps", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			created, err := repo.Task().Create(ctx, &model.Task{
				RiskID: "RR-2024-001",
				Title:  "Patch VPN appliance",
				Status: types.TaskStatusTodo,
			})
			gt.NoError(t, err).Required()
			gt.String(t, created.ID.String()).NotEqual("")
			gt.Bool(t, created.CreatedAt.IsZero()).False()

			got, err := repo.Task().Get(ctx, created.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got.Title).Equal("Patch VPN appliance")
			gt.Value(t, got.Status).Equal(types.TaskStatusTodo)
		})

		t.Run("ListByRisk filters by risk ID", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			for _, riskID := range []string{"RR-2024-001", "RR-2024-001", "RR-2024-002"} {
				_, err := repo.Task().Create(ctx, &model.Task{RiskID: riskID, Title: "task"})
				gt.NoError(t, err).Required()
			}

			tasks, err := repo.Task().ListByRisk(ctx, "RR-2024-001")
			gt.NoError(t, err).Required()
			gt.Array(t, tasks).Length(2)
			for _, task := range tasks {
				gt.Value(t, task.RiskID).Equal("RR-2024-001")
			}

			all, err := repo.Task().List(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, all).Length(3)

			none, err := repo.Task().ListByRisk(ctx, "RR-2030-001")
			gt.NoError(t, err).Required()
			gt.Array(t, none).Length(0)
		})

		t.Run("Update replaces fields", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			created, err := repo.Task().Create(ctx, &model.Task{RiskID: "RR-2024-001", Title: "old"})
			gt.NoError(t, err).Required()

			created.Title = "new"
			created.Status = types.TaskStatusCompleted
			updated, err := repo.Task().Update(ctx, created)
			gt.NoError(t, err).Required()
			gt.Value(t, updated.Title).Equal("new")
			gt.Value(t, updated.Status).Equal(types.TaskStatusCompleted)
			gt.Bool(t, sameTime(updated.CreatedAt, created.CreatedAt)).True()

			_, err = repo.Task().Update(ctx, &model.Task{ID: model.NewTaskID(), Title: "ghost"})
			gt.Error(t, err).Is(interfaces.ErrNotFound)
		})

		t.Run("Delete removes task", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			created, err := repo.Task().Create(ctx, &model.Task{RiskID: "RR-2024-001", Title: "t"})
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Task().Delete(ctx, created.ID)).Required()

			_, err = repo.Task().Get(ctx, created.ID)
			gt.Error(t, err).Is(interfaces.ErrNotFound)
		})
	})
}
