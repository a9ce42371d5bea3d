package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestUserRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		repo := newRepo(t)
		ctx := context.Background()

		n, err := repo.User().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, n).Equal(0)

		created, err := repo.User().Create(ctx, &model.User{
			Email:        "Alice@example.com",
			Name:         "Alice",
			Role:         types.RoleRiskManager,
			Department:   "it",
			PasswordHash: "hash",
		})
		gt.NoError(t, err).Required()
		gt.String(t, created.ID).NotEqual("")

		got, err := repo.User().GetByEmail(ctx, "alice@example.com")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.PasswordHash).Equal("hash")
		gt.Value(t, got.Role).Equal(types.RoleRiskManager)

		_, err = repo.User().Create(ctx, &model.User{Email: "ALICE@example.com", PasswordHash: "x"})
		gt.Error(t, err).Is(interfaces.ErrAlreadyExists)

		_, err = repo.User().GetByEmail(ctx, "bob@example.com")
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		byID, err := repo.User().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, byID.Email).Equal("Alice@example.com")

		n, err = repo.User().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, n).Equal(1)

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(1)
	})
}
