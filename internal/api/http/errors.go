package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/numerology-progress/internal/content"
	"github.com/mind-engage/numerology-progress/internal/progress"
)

// StatusFor translates engine error kinds into HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, progress.ErrValidation), errors.Is(err, progress.ErrIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, progress.ErrNotFound), errors.Is(err, content.ErrNotFound),
		errors.Is(err, progress.ErrUnknownExercise), errors.Is(err, progress.ErrUnknownHabit):
		return http.StatusNotFound
	case errors.Is(err, progress.ErrPrecondition), errors.Is(err, progress.ErrOutOfOrder),
		errors.Is(err, progress.ErrAlreadyCompleted), errors.Is(err, progress.ErrAlreadyStarted),
		errors.Is(err, progress.ErrNotEligible):
		return http.StatusConflict
	case errors.Is(err, progress.ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusServiceUnavailable || status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
