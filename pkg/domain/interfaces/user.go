package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)

	// GetByEmail retrieves a user by email address. Emails are unique.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	List(ctx context.Context) ([]*model.User, error)
	Count(ctx context.Context) (int, error)
}
