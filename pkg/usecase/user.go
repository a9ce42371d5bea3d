package usecase

import (
	"context"
	"crypto/rand"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores bytes after 72
	maxPasswordLength = 72
)

type UserUseCase struct {
	repo         interfaces.Repository
	riskConfig   *config.RiskConfig
	secret       []byte
	tokenTTL     time.Duration
	passwordCost int
	noAuthn      bool
	clock        func() time.Time
	cache        *authCache
}

// AuthOption is a functional option for UserUseCase
type AuthOption func(*UserUseCase)

// WithJWTSecret sets the HMAC key signing bearer tokens
func WithJWTSecret(secret []byte) AuthOption {
	return func(uc *UserUseCase) {
		uc.secret = secret
	}
}

// WithTokenTTL sets the lifetime of issued bearer tokens
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *UserUseCase) {
		uc.tokenTTL = ttl
	}
}

// WithPasswordCost sets the bcrypt cost of password hashes
func WithPasswordCost(cost int) AuthOption {
	return func(uc *UserUseCase) {
		uc.passwordCost = cost
	}
}

// WithNoAuthn disables authentication. Every caller is the anonymous admin.
func WithNoAuthn() AuthOption {
	return func(uc *UserUseCase) {
		uc.noAuthn = true
	}
}

// WithAuthClock sets the clock used for token issuance and validation
func WithAuthClock(clock func() time.Time) AuthOption {
	return func(uc *UserUseCase) {
		uc.clock = clock
	}
}

func NewUserUseCase(repo interfaces.Repository, cfg *config.RiskConfig, options ...AuthOption) *UserUseCase {
	uc := &UserUseCase{
		repo:         repo,
		riskConfig:   cfg,
		tokenTTL:     defaultTokenTTL,
		passwordCost: bcrypt.DefaultCost,
		clock:        time.Now,
	}

	for _, opt := range options {
		opt(uc)
	}
	uc.cache = newAuthCache(uc.clock)

	if len(uc.secret) == 0 && !uc.noAuthn {
		// Tokens signed with a random key do not survive a restart
		uc.secret = make([]byte, 32)
		if _, err := rand.Read(uc.secret); err != nil {
			panic("failed to generate JWT secret: " + err.Error())
		}
		logging.Default().Warn("JWT secret is not configured, using a random key")
	}

	return uc
}

// RegisterInput is the account to create
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Role       types.Role
	Department string
}

// Register creates a user account. The first account becomes admin and needs no session.
// Later accounts can be created only by an admin.
func (uc *UserUseCase) Register(ctx context.Context, session *auth.Session, input RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid email address", goerr.V(EmailKey, input.Email))
	}
	if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordLength {
		return nil, goerr.Wrap(ErrValidation, "password must be 8 to 72 bytes")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, goerr.Wrap(ErrValidation, "name is required")
	}

	count, err := uc.repo.User().Count(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count users")
	}

	role := input.Role
	if count == 0 {
		role = types.RoleAdmin
	} else {
		if session == nil {
			return nil, goerr.Wrap(ErrUnauthorized, "registration requires an admin session")
		}
		if !session.HasRole(types.RoleAdmin) {
			return nil, goerr.Wrap(ErrForbidden, "only admin can register users", goerr.V(UserIDKey, session.UserID))
		}
		if role == "" {
			role = types.RoleRiskIdentifier
		}
		if !role.IsValid() {
			return nil, goerr.Wrap(ErrValidation, "invalid role", goerr.V("role", role))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.passwordCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}

	user, err := uc.repo.User().Create(ctx, &model.User{
		Email:        email,
		Name:         name,
		Role:         role,
		Department:   strings.TrimSpace(input.Department),
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create user", goerr.V(EmailKey, email))
	}

	logging.From(ctx).Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// ListDepartments returns the configured departments together with the departments users
// belong to, de-duplicated by ID and sorted by name
func (uc *UserUseCase) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	seen := make(map[string]struct{})
	departments := []*model.Department{}
	add := func(id, name string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		if name == "" {
			name = id
		}
		departments = append(departments, &model.Department{ID: id, Name: name})
	}

	if uc.riskConfig != nil {
		for _, d := range uc.riskConfig.Departments {
			add(d.ID, d.Name)
		}
	}

	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	for _, u := range users {
		add(u.Department, u.Department)
	}

	sort.SliceStable(departments, func(i, j int) bool {
		if departments[i].Name != departments[j].Name {
			return departments[i].Name < departments[j].Name
		}
		return departments[i].ID < departments[j].ID
	})
	return departments, nil
}
