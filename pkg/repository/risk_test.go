package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

func TestRiskRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("Put creates risk and Get returns it", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			created, err := repo.Risk().Put(ctx, &model.Risk{
				RiskID:          "RR-2024-001",
				Department:      "it",
				RiskDescription: "Unpatched VPN appliance",
				Confidentiality: "high",
			})
			gt.NoError(t, err).Required()
			gt.Value(t, created.RiskID).Equal("RR-2024-001")
			gt.Bool(t, created.CreatedAt.IsZero()).False()
			gt.Bool(t, created.UpdatedAt.IsZero()).False()

			got, err := repo.Risk().Get(ctx, "RR-2024-001")
			gt.NoError(t, err).Required()
			gt.Value(t, got.Department).Equal("it")
			gt.Value(t, got.RiskDescription).Equal("Unpatched VPN appliance")
			gt.Value(t, got.Confidentiality).Equal("high")
		})

		t.Run("Put replaces existing risk and keeps CreatedAt", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			first, err := repo.Risk().Put(ctx, &model.Risk{RiskID: "RR-2024-002", Asset: "laptop"})
			gt.NoError(t, err).Required()

			second, err := repo.Risk().Put(ctx, &model.Risk{RiskID: "RR-2024-002", Asset: "server"})
			gt.NoError(t, err).Required()
			gt.Value(t, second.Asset).Equal("server")
			gt.Bool(t, sameTime(first.CreatedAt, second.CreatedAt)).True()

			risks, err := repo.Risk().List(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, risks).Length(1)
			gt.Value(t, risks[0].Asset).Equal("server")
		})

		t.Run("Get returns ErrNotFound for missing risk", func(t *testing.T) {
			repo := newRepo(t)
			_, err := repo.Risk().Get(context.Background(), "RR-1999-001")
			gt.Error(t, err).Is(interfaces.ErrNotFound)
		})

		t.Run("ListIDs returns every stored risk ID", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			ids, err := repo.Risk().ListIDs(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, ids).Length(0)

			for _, id := range []string{"RR-2024-001", "RR-2024-002", "RR-2025-001"} {
				_, err := repo.Risk().Put(ctx, &model.Risk{RiskID: id})
				gt.NoError(t, err).Required()
			}

			ids, err = repo.Risk().ListIDs(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, ids).Length(3)
			gt.Array(t, ids).Has("RR-2024-001")
			gt.Array(t, ids).Has("RR-2024-002")
			gt.Array(t, ids).Has("RR-2025-001")
		})

		t.Run("Delete removes risk", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			_, err := repo.Risk().Put(ctx, &model.Risk{RiskID: "RR-2024-003"})
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Risk().Delete(ctx, "RR-2024-003")).Required()

			_, err = repo.Risk().Get(ctx, "RR-2024-003")
			gt.Error(t, err).Is(interfaces.ErrNotFound)

			err = repo.Risk().Delete(ctx, "RR-2024-003")
			gt.Error(t, err).Is(interfaces.ErrNotFound)
		})
	})
}
