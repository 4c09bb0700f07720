package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"trip-planner-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writeServiceError maps domain errors to status codes. Provider failures get
// a retry hint instead of upstream details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "Could not find location. Please try again."
	case errors.Is(err, domain.ErrNoRoute):
		status, msg = http.StatusUnprocessableEntity, "Could not calculate route. Please try again."
	case errors.Is(err, domain.ErrProvider):
		status, msg = http.StatusBadGateway, "Provider unavailable. Please try again."
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUnknownWaypoint):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInsufficientWaypoints):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrInvalidPermutation),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrStaleRoute):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidTimeKind),
		errors.Is(err, domain.ErrInvalidCoordinates):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrTooManySessions):
		status, msg = http.StatusServiceUnavailable, err.Error()
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeError(w, r, status, msg)
}
