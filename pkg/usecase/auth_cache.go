package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedSession struct {
	session   *auth.Session
	expiresAt time.Time
}

// authCache keeps sessions of validated tokens so that every request does not hit the user repository
type authCache struct {
	cache sync.Map
	clock func() time.Time
}

func newAuthCache(clock func() time.Time) *authCache {
	return &authCache{clock: clock}
}

func (c *authCache) get(token string) (*auth.Session, bool) {
	val, ok := c.cache.Load(token)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedSession)
	if !c.clock().Before(cached.expiresAt) {
		c.cache.Delete(token)
		return nil, false
	}

	session := *cached.session
	return &session, true
}

// set caches session until the cache TTL or tokenExpiry, whichever comes first
func (c *authCache) set(token string, session *auth.Session, tokenExpiry time.Time) {
	expiresAt := c.clock().Add(authCacheTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}

	stored := *session
	c.cache.Store(token, &cachedSession{
		session:   &stored,
		expiresAt: expiresAt,
	})
}
