package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/beatx/beatx-server/pkg/errors"
	"github.com/beatx/beatx-server/pkg/logger"
	"github.com/beatx/beatx-server/pkg/validator"
)

// Envelope is the JSON response shape used on every endpoint:
// status 1 means success, 0 means failure, independent of the HTTP status.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes an arbitrary value with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope (status=1).
func OK(w http.ResponseWriter, httpStatus int, message string, data any) {
	WriteJSON(w, httpStatus, Envelope{Status: 1, Message: message, Data: data})
}

// Fail writes a failure envelope (status=0).
func Fail(w http.ResponseWriter, httpStatus int, message string) {
	WriteJSON(w, httpStatus, Envelope{Status: 0, Message: message})
}

// WriteError renders an error as a failure envelope using the normalized
// error-kind to status-code mapping. Rate-limited errors additionally set a
// Retry-After header. Internal errors are logged with full detail and
// rendered with a generic message; the caller never sees internals.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "request failed",
				slog.String("code", appErr.Code),
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		if appErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
		}
		Fail(w, appErr.Status, appErr.Message)
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrRateLimited):
		message = err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		message = "resource not found"
	case errors.Is(err, apperrors.ErrUpstream):
		message = "upstream service error"
	default:
		l.ErrorContext(r.Context(), "unexpected error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	Fail(w, status, message)
}

// WriteValidationError renders a request-validation failure. Field-level
// messages from the validator are flattened into the envelope message.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		Fail(w, http.StatusBadRequest, valErr.Error())
		return
	}
	Fail(w, http.StatusBadRequest, err.Error())
}
