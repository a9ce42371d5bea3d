package memory

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type userRepository struct {
	users *table[model.User]
}

func newUserRepository() *userRepository {
	return &userRepository{users: newTable("user", cloneValue[model.User])}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return nil, goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", user.Email))
	}

	created := cloneValue(user)
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	return r.users.insert(created.ID, created)
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	return r.users.get(id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	found := r.users.list(func(u *model.User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if len(found) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	return found[0], nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	return r.users.list(nil), nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	return r.users.count(), nil
}
