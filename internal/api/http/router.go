package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmw "github.com/mind-engage/numerology-progress/internal/auth/middleware"
	"github.com/mind-engage/numerology-progress/internal/content"
	"github.com/mind-engage/numerology-progress/internal/progress"
	"github.com/mind-engage/numerology-progress/internal/rbac"
	syncx "github.com/mind-engage/numerology-progress/internal/sync"
)

// EventLister reads the append-only event log of one record.
type EventLister interface {
	List(ctx context.Context, key string, limit int) ([]syncx.Event, error)
}

type Deps struct {
	Progress *progress.Service
	Lessons  content.Provider
	Auth     *authmw.AuthService
	// Events is optional; without it the events route is not mounted.
	Events EventLister
	// Ready reports whether backing stores are reachable; nil means always.
	Ready func(r *http.Request) error
}

// Mount registers every route on r.
func Mount(r chi.Router, d Deps) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require(rbac.PermLessonView)).
			Get("/lessons/{lessonID}", GetLessonHandler(d.Lessons))

		pr.With(rbac.RequireOwnerOr(rbac.PermProgressViewAll, func(r *http.Request) bool {
			return authmw.SubjectFromContext(r.Context()) == chi.URLParam(r, "userID")
		})).Get("/users/{userID}/progress/{lessonID}", GetUserProgressHandler(d.Progress))

		pr.Route("/progress/{lessonID}", func(lr chi.Router) {
			lr.With(rbac.Require(rbac.PermProgressViewOwn)).Get("/", GetProgressHandler(d.Progress))
			lr.With(rbac.Require(rbac.PermProgressViewOwn)).Get("/exercises", ListResponsesHandler(d.Progress))
			if d.Events != nil {
				lr.With(rbac.RequireAny(rbac.PermProgressViewOwn, rbac.PermProgressViewAll)).
					Get("/events", ListEventsHandler(d.Events))
			}

			lr.Group(func(wr chi.Router) {
				wr.Use(rbac.Require(rbac.PermProgressWrite))

				wr.Post("/theory/read", MarkTheoryReadHandler(d.Progress))

				wr.Put("/exercises/{exerciseID}/response", SaveResponseHandler(d.Progress))
				wr.Post("/exercises/{exerciseID}/complete", CompleteExerciseHandler(d.Progress))

				wr.Post("/quiz/open", OpenQuizHandler(d.Progress))
				wr.Put("/quiz/answers/{questionID}", RecordAnswerHandler(d.Progress))
				wr.Post("/quiz/submit", SubmitQuizHandler(d.Progress))
				wr.Post("/quiz/reset", ResetQuizHandler(d.Progress))

				wr.Post("/challenge/start", StartChallengeHandler(d.Progress))
				wr.Post("/challenge/days/{day}/complete", CompleteDayHandler(d.Progress))
				wr.Post("/challenge/rating", RateChallengeHandler(d.Progress))

				wr.Post("/habits/start", StartHabitsHandler(d.Progress))
				wr.Post("/habits/new-day", NewHabitDayHandler(d.Progress))
				wr.Put("/habits/{habit}", ToggleHabitHandler(d.Progress))
			})
		})
	})
}

// NewRouter returns a chi router with the standard middleware stack, any
// extra middleware (CORS in production) and all routes mounted.
func NewRouter(d Deps, extra ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(extra...)
	Mount(r, d)
	return r
}
