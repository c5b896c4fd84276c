package handler

// Response helpers shared by every handler. All error responses carry the
// same shape:
//
//	{"status": 404, "error": "question not found with id abc"}
//
// The one exception is a failed login, which always answers with the fixed
// body {"error": "Authentication failed"} regardless of why — the response
// must not reveal whether the username exists.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"studyhub/internal/apperror"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// writeJSON sends a JSON response with the given status code. Headers must
// be set before the first body write; Encode writes the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding JSON response", slog.Any("error", err))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends the standard
// envelope. errors.Is walks the wrap chain, so a service error like
//
//	fmt.Errorf("service/question: fetching question %s: %w", id, apperror.NotFound(...))
//
// still maps to 404 with the AppError's message.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
		writeJSON(w, status, ErrorResponse{Status: status, Error: appErr.Message})
		return
	}

	// Unknown error: never leak internals (SQL, file paths) to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Status: http.StatusInternalServerError,
		Error:  "An internal error occurred",
	})
}

// writeAuthFailed sends the fixed login-failure body.
func writeAuthFailed(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication failed"})
}

// decodeBody reads a JSON request body into dst. A malformed body is a
// validation error, not a 500.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "request body is not valid JSON")
	}
	return nil
}
