package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer     = "themis"
	defaultTokenTTL = 24 * time.Hour
)

// LoginResult is a bearer token and the user it was issued to
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// Login checks email and password and issues a bearer token
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := uc.repo.User().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, goerr.Wrap(ErrUnauthorized, "invalid email or password")
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(EmailKey, email))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, goerr.Wrap(ErrUnauthorized, "invalid email or password")
	}

	now := uc.clock()
	expiresAt := now.Add(uc.tokenTTL)
	token, err := uc.issueToken(user, now, expiresAt)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (uc *UserUseCase) issueToken(user *model.User, now, expiresAt time.Time) (string, error) {
	tok, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(user.ID).
		IssuedAt(now).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token", goerr.V(UserIDKey, user.ID))
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token", goerr.V(UserIDKey, user.ID))
	}
	return string(signed), nil
}

// Authenticate resolves a bearer token to the session of its user. The role is read from
// the user record so that role changes apply to issued tokens.
func (uc *UserUseCase) Authenticate(ctx context.Context, token string) (*auth.Session, error) {
	if uc.noAuthn {
		return uc.anonymousSession(), nil
	}
	if token == "" {
		return nil, goerr.Wrap(ErrUnauthorized, "bearer token is required")
	}

	if session, ok := uc.cache.get(token); ok {
		return session, nil
	}

	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.clock)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthorized, "invalid token", goerr.V("cause", err.Error()))
	}

	user, err := uc.repo.User().Get(ctx, tok.Subject())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, goerr.Wrap(ErrUnauthorized, "user of token does not exist", goerr.V(UserIDKey, tok.Subject()))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, tok.Subject()))
	}

	session := &auth.Session{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		Token:      token,
	}
	uc.cache.set(token, session, tok.Expiration())
	return session, nil
}
