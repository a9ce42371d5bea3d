package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"github.com/secmon-lab/themis/pkg/wizard"
)

// maxBodySize bounds JSON request bodies
const maxBodySize = 1 << 20

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// statusOf maps use case and wizard errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, wizard.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden),
		errors.Is(err, wizard.ErrAccessRestricted):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, usecase.ErrWizardNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrConflict),
		errors.Is(err, wizard.ErrSubmitNotAllowed):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrClosed):
		return http.StatusGone
	case errors.Is(err, wizard.ErrStepInvalid),
		errors.Is(err, wizard.ErrInvalidRiskID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

// decodeJSON reads the request body into v and validates it by its struct tags
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := decoder.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return validateRequest(v)
}

func validateRequest(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return goerr.Wrap(usecase.ErrValidation, "invalid request",
				goerr.V("field", verrs[0].Field()),
				goerr.V("rule", verrs[0].Tag()))
		}
		return goerr.Wrap(usecase.ErrValidation, "invalid request", goerr.V("cause", err.Error()))
	}
	return nil
}
