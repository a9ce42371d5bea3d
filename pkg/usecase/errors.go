package usecase

import (
	"errors"

	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// Sentinel errors for use case layer
var (
	// Not found errors. Repository not found errors are the same sentinel.
	ErrNotFound       = interfaces.ErrNotFound
	ErrWizardNotFound = errors.New("wizard session not found")

	// ErrConflict is returned when a unique key is already taken
	ErrConflict = interfaces.ErrAlreadyExists

	// Input errors
	ErrValidation = errors.New("validation failed")

	// Access control errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrStorageUnavailable is returned by file operations without a configured storage
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// Context keys for error values
const (
	RiskIDKey     = "risk_id"
	TaskIDKey     = "task_id"
	DocumentIDKey = "document_id"
	ControlIDKey  = "control_id"
	ReferenceKey  = "reference"
	FieldKey      = "field"
	UserIDKey     = "user_id"
	EmailKey      = "email"
	WizardIDKey   = "wizard_id"
)
