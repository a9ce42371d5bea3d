package auth

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Session is the authenticated caller. It is passed explicitly to components that need the
// caller's role or bearer token instead of being looked up from ambient state.
type Session struct {
	UserID     string     `json:"userId"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       types.Role `json:"role"`
	Department string     `json:"department"`
	Token      string     `json:"-" masq:"secret"`
}

const anonymousUserID = "anonymous"

// NewAnonymousSession returns the session used when authentication is disabled
func NewAnonymousSession() *Session {
	return &Session{
		UserID: anonymousUserID,
		Name:   "Anonymous",
		Role:   types.RoleAdmin,
	}
}

// IsAnonymous reports whether the session was created by NewAnonymousSession
func (s *Session) IsAnonymous() bool {
	return s != nil && s.UserID == anonymousUserID
}

// HasRole reports whether the session holds one of roles
func (s *Session) HasRole(roles ...types.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

type ctxSessionKey struct{}

// ContextWithSession stores session in ctx
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, session)
}

// SessionFromContext returns the session stored in ctx, or nil
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(ctxSessionKey{}).(*Session)
	return session
}
