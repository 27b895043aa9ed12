package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/logx"
)

// errorKind maps a domain sentinel to its HTTP status and error code.
type errorKind struct {
	sentinel error
	status   int
	code     string
}

// errorKinds is checked in order; the first sentinel matched by errors.Is wins.
var errorKinds = []errorKind{
	{domain.ErrValidation, http.StatusBadRequest, "validation_error"},
	{domain.ErrConflict, http.StatusBadRequest, "conflict"},
	{domain.ErrExpired, http.StatusBadRequest, "expired"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrConfiguration, http.StatusInternalServerError, "configuration_error"},
	{domain.ErrNotification, http.StatusBadGateway, "notification_failed"},
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// writeServiceError classifies err and writes the matching error response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("body_too_large", "request body too large"))
		return
	}

	for _, k := range errorKinds {
		if !errors.Is(err, k.sentinel) {
			continue
		}
		msg := unwrapMessage(err, k.sentinel)
		if msg == "" {
			msg = k.sentinel.Error()
		}
		if k.status >= http.StatusInternalServerError {
			logx.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
				slog.String("code", k.code), slog.Any("error", err))
		}
		writeJSON(w, k.status, errorBody(k.code, msg))
		return
	}

	logx.FromContext(r.Context()).ErrorContext(r.Context(), "unhandled error", slog.Any("error", err))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
}

// labelNotFound names what was missing when a repo reports a bare
// domain.ErrNotFound (e.g. "trip not found"). Other errors pass through.
func labelNotFound(err error, label string) error {
	if errors.Is(err, domain.ErrNotFound) && unwrapMessage(err, domain.ErrNotFound) == "" {
		return fmt.Errorf("%w: %s", err, label)
	}
	return err
}

// unwrapMessage extracts the human-readable part that follows the sentinel
// in a wrapped error.
// e.g. "service.TripService.Create: validation error: title is required" → "title is required"
func unwrapMessage(err error, sentinel error) string {
	if err == nil {
		return ""
	}
	marker := sentinel.Error() + ": "
	msg := err.Error()
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return ""
}
