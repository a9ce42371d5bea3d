package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for bearer token authentication
type Auth struct {
	jwtSecret string
	tokenTTL  time.Duration
	noAuthn   bool
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HMAC secret for signing bearer tokens (random per process when empty)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("THEMIS_JWT_SECRET"),
			Destination: &x.jwtSecret,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of issued bearer tokens",
			Category:    "Authentication",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("THEMIS_TOKEN_TTL"),
			Destination: &x.tokenTTL,
		},
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run every request as an anonymous admin (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("THEMIS_NO_AUTH"),
			Destination: &x.noAuthn,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwt-secret.len", len(x.jwtSecret)),
		slog.Duration("token-ttl", x.tokenTTL),
		slog.Bool("no-auth", x.noAuthn),
	)
}

// IsNoAuthMode reports whether authentication is disabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthn
}

// Configure returns the use case options for authentication
func (x *Auth) Configure() []usecase.AuthOption {
	var opts []usecase.AuthOption
	if x.jwtSecret != "" {
		opts = append(opts, usecase.WithJWTSecret([]byte(x.jwtSecret)))
	}
	if x.tokenTTL > 0 {
		opts = append(opts, usecase.WithTokenTTL(x.tokenTTL))
	}
	if x.noAuthn {
		logging.Default().Warn("Running in no-auth mode (development only)")
		opts = append(opts, usecase.WithNoAuthn())
	}
	return opts
}
