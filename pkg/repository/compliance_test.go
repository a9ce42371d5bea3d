package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestDocumentRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Document().Create(ctx, &model.Document{
			Title:      "Access Control Policy",
			Status:     types.DocumentStatusDraft,
			FileName:   "policy.pdf",
			StoredName: "abc.pdf",
			Size:       42,
		})
		gt.NoError(t, err).Required()
		gt.String(t, created.ID).NotEqual("")

		got, err := repo.Document().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.StoredName).Equal("abc.pdf")
		gt.Value(t, got.Size).Equal(int64(42))

		got.Status = types.DocumentStatusApproved
		updated, err := repo.Document().Update(ctx, got)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.DocumentStatusApproved)

		docs, err := repo.Document().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, docs).Length(1)

		gt.NoError(t, repo.Document().Delete(ctx, created.ID)).Required()
		_, err = repo.Document().Get(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestControlRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("reference is unique", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			first, err := repo.Control().Create(ctx, &model.Control{Reference: "A.5.1", Title: "Policies"})
			gt.NoError(t, err).Required()

			_, err = repo.Control().Create(ctx, &model.Control{Reference: "A.5.1", Title: "Duplicate"})
			gt.Error(t, err).Is(interfaces.ErrAlreadyExists)

			second, err := repo.Control().Create(ctx, &model.Control{Reference: "A.5.2", Title: "Roles"})
			gt.NoError(t, err).Required()

			second.Reference = "A.5.1"
			_, err = repo.Control().Update(ctx, second)
			gt.Error(t, err).Is(interfaces.ErrAlreadyExists)

			first.Title = "Information security policies"
			updated, err := repo.Control().Update(ctx, first)
			gt.NoError(t, err).Required()
			gt.Value(t, updated.Title).Equal("Information security policies")
		})

		t.Run("GetByReference", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			created, err := repo.Control().Create(ctx, &model.Control{Reference: "A.8.8", Title: "Vulnerabilities"})
			gt.NoError(t, err).Required()

			got, err := repo.Control().GetByReference(ctx, "A.8.8")
			gt.NoError(t, err).Required()
			gt.Value(t, got.ID).Equal(created.ID)

			_, err = repo.Control().GetByReference(ctx, "A.9.9")
			gt.Error(t, err).Is(interfaces.ErrNotFound)
		})
	})
}

func TestSoARepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.SoA().Create(ctx, &model.SoAEntry{
			ControlReference:     "A.5.1",
			Applicable:           true,
			ImplementationStatus: types.ImplementationPartiallyImplemented,
		})
		gt.NoError(t, err).Required()

		got, err := repo.SoA().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Applicable).True()
		gt.Value(t, got.ImplementationStatus).Equal(types.ImplementationPartiallyImplemented)

		got.Applicable = false
		got.Justification = "Not in scope"
		updated, err := repo.SoA().Update(ctx, got)
		gt.NoError(t, err).Required()
		gt.Bool(t, updated.Applicable).False()

		gt.NoError(t, repo.SoA().Delete(ctx, created.ID)).Required()
		err = repo.SoA().Delete(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestGapRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Gap().Create(ctx, &model.Gap{
			ControlReference: "A.8.8",
			Description:      "No vulnerability scanning",
			Status:           types.GapStatusOpen,
			RiskID:           "RR-2024-001",
		})
		gt.NoError(t, err).Required()

		gaps, err := repo.Gap().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, gaps).Length(1)
		gt.Value(t, gaps[0].RiskID).Equal("RR-2024-001")

		created.Status = types.GapStatusClosed
		updated, err := repo.Gap().Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.GapStatusClosed)

		_, err = repo.Gap().Get(ctx, "missing")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}
