package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func registerAdmin(t *testing.T, uc *usecase.UseCases) (*model.User, *auth.Session) {
	t.Helper()
	ctx := context.Background()

	admin, err := uc.User.Register(ctx, nil, usecase.RegisterInput{
		Email:    "admin@example.com",
		Password: "correct-horse",
		Name:     "Admin",
	})
	gt.NoError(t, err).Required()

	login, err := uc.User.Login(ctx, "admin@example.com", "correct-horse")
	gt.NoError(t, err).Required()
	session, err := uc.User.Authenticate(ctx, login.Token)
	gt.NoError(t, err).Required()
	return admin, session
}

func TestUserUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("first user becomes admin", func(t *testing.T) {
		uc, _ := newUseCases(t)
		admin, _ := registerAdmin(t, uc)
		gt.Value(t, admin.Role).Equal(types.RoleAdmin)
		gt.Value(t, admin.PasswordHash).NotEqual("correct-horse")
	})

	t.Run("later users need an admin session", func(t *testing.T) {
		uc, _ := newUseCases(t)
		_, adminSession := registerAdmin(t, uc)

		input := usecase.RegisterInput{
			Email:      "alice@example.com",
			Password:   "password123",
			Name:       "Alice",
			Department: "Finance",
		}

		_, err := uc.User.Register(ctx, nil, input)
		gt.Error(t, err).Is(usecase.ErrUnauthorized)

		_, err = uc.User.Register(ctx, &auth.Session{UserID: "u", Role: types.RoleRiskOwner}, input)
		gt.Error(t, err).Is(usecase.ErrForbidden)

		alice, err := uc.User.Register(ctx, adminSession, input)
		gt.NoError(t, err).Required()
		gt.Value(t, alice.Role).Equal(types.RoleRiskIdentifier)

		_, err = uc.User.Register(ctx, adminSession, input)
		gt.Error(t, err).Is(usecase.ErrConflict)
	})

	t.Run("input validation", func(t *testing.T) {
		uc, _ := newUseCases(t)
		cases := []usecase.RegisterInput{
			{Email: "not-an-email", Password: "password123", Name: "A"},
			{Email: "a@example.com", Password: "short", Name: "A"},
			{Email: "a@example.com", Password: "password123", Name: "  "},
		}
		for _, input := range cases {
			_, err := uc.User.Register(ctx, nil, input)
			gt.Error(t, err).Is(usecase.ErrValidation)
		}
	})
}

func TestUserUseCase_Login(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: fixedClock()}
	uc, _ := newUseCases(t, usecase.WithClock(clock.Now))
	admin, _ := registerAdmin(t, uc)

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.User.Login(ctx, "admin@example.com", "wrong-password")
		gt.Error(t, err).Is(usecase.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := uc.User.Login(ctx, "nobody@example.com", "correct-horse")
		gt.Error(t, err).Is(usecase.ErrUnauthorized)
	})

	t.Run("token resolves to session", func(t *testing.T) {
		login, err := uc.User.Login(ctx, "ADMIN@example.com", "correct-horse")
		gt.NoError(t, err).Required()
		gt.Value(t, login.User.ID).Equal(admin.ID)

		session, err := uc.User.Authenticate(ctx, login.Token)
		gt.NoError(t, err).Required()
		gt.Value(t, session.UserID).Equal(admin.ID)
		gt.Value(t, session.Role).Equal(types.RoleAdmin)
		gt.Value(t, session.Token).Equal(login.Token)
	})

	t.Run("tampered token", func(t *testing.T) {
		login, err := uc.User.Login(ctx, "admin@example.com", "correct-horse")
		gt.NoError(t, err).Required()

		_, err = uc.User.Authenticate(ctx, login.Token+"x")
		gt.Error(t, err).Is(usecase.ErrUnauthorized)
		_, err = uc.User.Authenticate(ctx, "")
		gt.Error(t, err).Is(usecase.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		login, err := uc.User.Login(ctx, "admin@example.com", "correct-horse")
		gt.NoError(t, err).Required()
		_, err = uc.User.Authenticate(ctx, login.Token)
		gt.NoError(t, err).Required()

		clock.Advance(25 * time.Hour)
		_, err = uc.User.Authenticate(ctx, login.Token)
		gt.Error(t, err).Is(usecase.ErrUnauthorized)
	})
}

func TestUserUseCase_NoAuthn(t *testing.T) {
	uc := usecase.New(nil, usecase.WithAuth(usecase.WithNoAuthn()))
	gt.Bool(t, uc.User.IsNoAuthn()).True()

	session, err := uc.User.Authenticate(context.Background(), "")
	gt.NoError(t, err).Required()
	gt.Bool(t, session.IsAnonymous()).True()
	gt.Value(t, session.Role).Equal(types.RoleAdmin)
}

func TestUserUseCase_ListDepartments(t *testing.T) {
	ctx := context.Background()
	cfg := &config.RiskConfig{Departments: []config.Department{
		{ID: "it", Name: "IT"},
		{ID: "finance", Name: "Finance"},
	}}
	uc, _ := newUseCases(t, usecase.WithRiskConfig(cfg))
	_, adminSession := registerAdmin(t, uc)

	for i, dept := range []string{"Legal", "finance", ""} {
		_, err := uc.User.Register(ctx, adminSession, usecase.RegisterInput{
			Email:      []string{"a@example.com", "b@example.com", "c@example.com"}[i],
			Password:   "password123",
			Name:       "user",
			Department: dept,
		})
		gt.NoError(t, err).Required()
	}

	departments, err := uc.User.ListDepartments(ctx)
	gt.NoError(t, err).Required()

	names := make([]string, len(departments))
	for i, d := range departments {
		names[i] = d.Name
	}
	gt.Value(t, names).Equal([]string{"Finance", "IT", "Legal"})
}
