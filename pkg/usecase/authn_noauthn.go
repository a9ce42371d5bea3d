package usecase

import (
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
)

// IsNoAuthn reports whether authentication is disabled
func (uc *UserUseCase) IsNoAuthn() bool {
	return uc.noAuthn
}

// anonymousSession is the caller of every request in no-auth mode
func (uc *UserUseCase) anonymousSession() *auth.Session {
	return auth.NewAnonymousSession()
}
