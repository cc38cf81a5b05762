package api

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/trygglabs/trygg/internal/database/types"
)

// Error codes returned in response bodies.
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the envelope for every error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and a human-readable
// message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// parseJSONBody parses a JSON request body, rejecting unknown fields so
// a misspelled field fails loudly instead of silently defaulting.
func parseJSONBody(r *http.Request, v any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(v)
}

// mapServiceError translates a service error into an HTTP status and
// error code. Validation failures are the caller's fault, conflicts mean
// the operation raced a concurrent transition and is safe to retry after
// a fresh read, and an unstaffed crisis surfaces as unavailable because
// the system could not raise a human for the case.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrMissingExternalRef),
		errors.Is(err, types.ErrInvalidBirthDate),
		errors.Is(err, types.ErrUnknownLegacyCategory),
		errors.Is(err, types.ErrNoAgeInput),
		errors.Is(err, types.ErrMissingGuardianContact),
		errors.Is(err, types.ErrConsentNotRequired),
		errors.Is(err, types.ErrMissingContentRef),
		errors.Is(err, types.ErrInvalidSeverity),
		errors.Is(err, types.ErrMissingResponderID):
		return http.StatusBadRequest, ErrCodeInvalidInput
	case errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrConsentNotFound),
		errors.Is(err, types.ErrAlertNotFound),
		errors.Is(err, types.ErrIncidentNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, types.ErrUserExists),
		errors.Is(err, types.ErrDuplicateActiveRequest),
		errors.Is(err, types.ErrAlreadyDecided),
		errors.Is(err, types.ErrConsentWindowClosed),
		errors.Is(err, types.ErrAlreadyAccepted),
		errors.Is(err, types.ErrAlreadyResolved),
		errors.Is(err, types.ErrNotEscalated):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, types.ErrUnstaffedCrisis):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// respondServiceError maps a service error and sends it. Internal errors
// are masked so storage details never reach a client.
func respondServiceError(w http.ResponseWriter, err error) {
	status, code := mapServiceError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "an internal error occurred"
	}

	respondError(w, status, code, message)
}
