package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/numerology-progress/internal/auth/middleware"
	"github.com/mind-engage/numerology-progress/internal/progress"
	syncx "github.com/mind-engage/numerology-progress/internal/sync"
)

// Handlers only; routes are mounted by Mount.

type snapshotView struct {
	Progress  progress.LessonProgress `json:"progress"`
	Breakdown progress.Breakdown      `json:"breakdown"`
}

func viewOf(s progress.Snapshot) snapshotView {
	return snapshotView{Progress: s.Progress.Redacted(), Breakdown: s.Breakdown}
}

type progressCall func(r *http.Request, userID, lessonID string) (progress.Snapshot, error)

// serve runs fn for the caller's own record and writes the refreshed snapshot.
func serve(fn progressCall) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		lessonID := strings.TrimSpace(chi.URLParam(r, "lessonID"))
		snap, err := fn(r, userID, lessonID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(snap))
	}
}

// pathParam returns the unescaped URL parameter; habit names may contain
// spaces.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		v = u
	}
	return strings.TrimSpace(v)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badJSON{err}
	}
	return nil
}

type badJSON struct{ err error }

func (b badJSON) Error() string { return "bad json: " + b.err.Error() }
func (b badJSON) Unwrap() error { return progress.ErrValidation }

// GET /progress/{lessonID}
func GetProgressHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.Refresh(r.Context(), userID, lessonID)
	})
}

// GET /users/{userID}/progress/{lessonID}
func GetUserProgressHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(chi.URLParam(r, "userID"))
		lessonID := strings.TrimSpace(chi.URLParam(r, "lessonID"))
		snap, err := svc.View(r.Context(), userID, lessonID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(snap))
	}
}

// POST /progress/{lessonID}/theory/read
func MarkTheoryReadHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.MarkRead(r.Context(), userID, lessonID)
	})
}

// GET /progress/{lessonID}/exercises
func ListResponsesHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		resp, err := svc.Responses(r.Context(), userID, chi.URLParam(r, "lessonID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// GET /progress/{lessonID}/events?limit=50
func ListEventsHandler(events EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		key := syncx.RecordKey(userID, strings.TrimSpace(chi.URLParam(r, "lessonID")))
		evs, err := events.List(r.Context(), key, limit)
		if err != nil {
			writeError(w, progress.ErrStore)
			return
		}
		out := make([]json.RawMessage, 0, len(evs))
		for _, e := range evs {
			out = append(out, json.RawMessage(e.DataJSON))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// PUT /progress/{lessonID}/exercises/{exerciseID}/response  {"text": "..."}
func SaveResponseHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		var req struct {
			Text string `json:"text"`
		}
		if err := decode(r, &req); err != nil {
			return progress.Snapshot{}, err
		}
		return svc.SaveResponse(r.Context(), userID, lessonID, pathParam(r, "exerciseID"), req.Text)
	})
}

// POST /progress/{lessonID}/exercises/{exerciseID}/complete
func CompleteExerciseHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.MarkExerciseComplete(r.Context(), userID, lessonID, pathParam(r, "exerciseID"))
	})
}

// POST /progress/{lessonID}/quiz/open
func OpenQuizHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.OpenQuiz(r.Context(), userID, lessonID)
	})
}

// PUT /progress/{lessonID}/quiz/answers/{questionID}  {"choice": "b"}
func RecordAnswerHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		var req struct {
			Choice string `json:"choice"`
		}
		if err := decode(r, &req); err != nil {
			return progress.Snapshot{}, err
		}
		return svc.RecordAnswer(r.Context(), userID, lessonID, pathParam(r, "questionID"), req.Choice)
	})
}

// POST /progress/{lessonID}/quiz/submit
func SubmitQuizHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.SubmitQuiz(r.Context(), userID, lessonID)
	})
}

// POST /progress/{lessonID}/quiz/reset
func ResetQuizHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.ResetQuiz(r.Context(), userID, lessonID)
	})
}

// POST /progress/{lessonID}/challenge/start  {"challenge_id": "..."}
func StartChallengeHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		var req struct {
			ChallengeID string `json:"challenge_id"`
		}
		if err := decode(r, &req); err != nil {
			return progress.Snapshot{}, err
		}
		return svc.StartChallenge(r.Context(), userID, lessonID, req.ChallengeID)
	})
}

// POST /progress/{lessonID}/challenge/days/{day}/complete
func CompleteDayHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		day, err := strconv.Atoi(chi.URLParam(r, "day"))
		if err != nil {
			return progress.Snapshot{}, badJSON{err}
		}
		return svc.CompleteChallengeDay(r.Context(), userID, lessonID, day)
	})
}

// POST /progress/{lessonID}/challenge/rating  {"rating": 5}
func RateChallengeHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		var req struct {
			Rating int `json:"rating"`
		}
		if err := decode(r, &req); err != nil {
			return progress.Snapshot{}, err
		}
		return svc.CompleteChallenge(r.Context(), userID, lessonID, req.Rating)
	})
}

// POST /progress/{lessonID}/habits/start
func StartHabitsHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.StartHabits(r.Context(), userID, lessonID)
	})
}

// PUT /progress/{lessonID}/habits/{habit}  {"checked": true}
func ToggleHabitHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		var req struct {
			Checked bool `json:"checked"`
		}
		if err := decode(r, &req); err != nil {
			return progress.Snapshot{}, err
		}
		return svc.ToggleHabit(r.Context(), userID, lessonID, pathParam(r, "habit"), req.Checked)
	})
}

// POST /progress/{lessonID}/habits/new-day
func NewHabitDayHandler(svc *progress.Service) http.HandlerFunc {
	return serve(func(r *http.Request, userID, lessonID string) (progress.Snapshot, error) {
		return svc.ResetHabitsForNewDay(r.Context(), userID, lessonID)
	})
}
