package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

const bearerPrefix = "Bearer "

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// authMiddleware resolves the bearer token to a session. In no-auth mode every request
// runs as the anonymous admin.
func authMiddleware(users *usecase.UserUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := users.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				handleError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r, session)))
		})
	}
}

// optionalAuthMiddleware attaches a session when the request carries a valid token
func optionalAuthMiddleware(users *usecase.UserUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" && !users.IsNoAuthn() {
				next.ServeHTTP(w, r)
				return
			}

			session, err := users.Authenticate(r.Context(), token)
			if err != nil {
				handleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r, session)))
		})
	}
}

func withSession(r *http.Request, session *auth.Session) context.Context {
	ctx := auth.ContextWithSession(r.Context(), session)
	return logging.With(ctx, logging.From(ctx).With("user_id", session.UserID))
}

// writeGuard rejects modifying requests from read-only roles
func writeGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		session := auth.SessionFromContext(r.Context())
		if session == nil || !session.Role.CanWrite() {
			err := goerr.Wrap(usecase.ErrForbidden, "role is read only")
			errutil.HandleHTTP(r.Context(), w, err, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
