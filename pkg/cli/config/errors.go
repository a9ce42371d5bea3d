package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrDuplicateID        = goerr.New("duplicate ID")
	ErrInvalidID          = goerr.New("invalid ID format")
	ErrMissingName        = goerr.New("name is required")
	ErrInvalidScore       = goerr.New("score must be between 1 and 5")
	ErrInvalidBackend     = goerr.New("invalid backend")
	ErrMissingParameter   = goerr.New("required parameter is missing")
	ErrInvalidLogSettings = goerr.New("invalid logger settings")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	SectionKey    = "section"
	IDKey         = "id"
	IndexKey      = "index"
	BackendKey    = "backend"
	ParameterKey  = "parameter"
)
