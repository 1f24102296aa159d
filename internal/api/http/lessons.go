package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/numerology-progress/internal/content"
)

// GET /lessons/{lessonID}
func GetLessonHandler(lessons content.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "lessonID"))
		l, err := lessons.Lesson(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l.Public())
	}
}
