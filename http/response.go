package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/keyfold/keyfold"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteText writes a short plain-text response
func WriteText(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, message)
}

// HandleError writes the response matching an error from the service layer.
// An unrecognized error is a store or runtime failure: it becomes a 500 and
// the error text is surfaced to the caller as-is, a debugging convenience
// rather than a security boundary.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	if errors.Is(err, keyfold.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
		return
	}

	if errors.Is(err, keyfold.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "invalid_path", err.Error())
		return
	}

	if errors.Is(err, keyfold.ErrUnauthorized) {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
