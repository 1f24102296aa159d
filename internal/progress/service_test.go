package progress_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mind-engage/numerology-progress/internal/content"
	"github.com/mind-engage/numerology-progress/internal/logger"
	"github.com/mind-engage/numerology-progress/internal/progress"
)

type recordingSink struct {
	mu     sync.Mutex
	events []progress.Event
	err    error
}

func (r *recordingSink) Emit(_ context.Context, e progress.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type failingStore struct{}

func (failingStore) Get(context.Context, string, string) (progress.LessonProgress, bool, error) {
	return progress.LessonProgress{}, false, errors.New("connection refused")
}
func (failingStore) Put(context.Context, progress.LessonProgress) error {
	return errors.New("connection refused")
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func testLesson() content.Lesson {
	days := make([]content.ChallengeDay, 7)
	for i := range days {
		days[i] = content.ChallengeDay{Day: i + 1, Title: "day"}
	}
	return content.Lesson{
		ID:    "lesson-1",
		Title: "Life Path",
		Exercises: []content.Exercise{
			{ID: "ex-1", Title: "Own number", Type: "calculation"},
			{ID: "ex-2", Title: "Relative", Type: "calculation"},
		},
		Quiz: &content.Quiz{ID: "quiz-1", Questions: []content.Question{
			{ID: "q1", Prompt: "11 is?", Options: []string{"plain", "master"}, CorrectAnswerKey: "b"},
			{ID: "q2", Prompt: "29 reduces to?", Options: []string{"11", "2"}, CorrectAnswerKey: "a"},
		}},
		Challenge: &content.Challenge{ID: "ch-7", Title: "Seven days", Days: days},
		Habits:    []string{"h1", "h2", "h3", "h4", "h5"},
	}
}

func newService(t *testing.T, store progress.Store, clock progress.Clock, auto bool) (*progress.Service, *recordingSink) {
	t.Helper()
	cat, err := content.NewCatalog(testLesson(), content.Lesson{ID: "empty"})
	if err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}
	n := 0
	svc := progress.NewService(store, cat, progress.Options{
		Clock:             clock,
		HabitAutoRollover: auto,
		Events:            sink,
		Log:               logger.Nop(),
		NewID: func() string {
			n++
			return "id-" + string(rune('a'+n))
		},
	})
	return svc, sink
}

func TestServiceLessonFlow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	store := progress.NewInMemoryStore()
	svc, sink := newService(t, store, clock, false)

	snap, err := svc.Refresh(ctx, "u1", "lesson-1")
	must(t, err)
	if snap.Breakdown.Overall != 0 || len(snap.Progress.ExerciseCompletion) != 2 {
		t.Fatalf("fresh snapshot: %+v", snap)
	}
	if _, ok, _ := store.Get(ctx, "u1", "lesson-1"); ok {
		t.Fatal("refresh must not persist an untouched record")
	}

	snap, err = svc.MarkRead(ctx, "u1", "lesson-1")
	must(t, err)
	if snap.Breakdown.Overall != 20 {
		t.Fatalf("after theory: %d", snap.Breakdown.Overall)
	}
	_, err = svc.MarkRead(ctx, "u1", "lesson-1")
	must(t, err)

	_, err = svc.OpenQuiz(ctx, "u1", "lesson-1")
	must(t, err)
	_, err = svc.RecordAnswer(ctx, "u1", "lesson-1", "q1", "b")
	must(t, err)
	if _, err := svc.SubmitQuiz(ctx, "u1", "lesson-1"); !errors.Is(err, progress.ErrIncomplete) {
		t.Fatalf("partial submit: %v", err)
	}
	_, err = svc.RecordAnswer(ctx, "u1", "lesson-1", "q2", "a")
	must(t, err)
	snap, err = svc.SubmitQuiz(ctx, "u1", "lesson-1")
	must(t, err)
	if !snap.Progress.Quiz.Result.Passed || snap.Breakdown.Overall != 40 {
		t.Fatalf("after quiz: %+v %+v", snap.Progress.Quiz.Result, snap.Breakdown)
	}

	if _, err := svc.StartChallenge(ctx, "u1", "lesson-1", "other"); !errors.Is(err, progress.ErrValidation) {
		t.Fatalf("wrong challenge id: %v", err)
	}
	snap, err = svc.StartChallenge(ctx, "u1", "lesson-1", "ch-7")
	must(t, err)
	if snap.Progress.Challenge.DaysTotal != 7 || snap.Breakdown.Overall != 60 {
		t.Fatalf("after challenge start: %+v", snap.Breakdown)
	}
	if _, err := svc.StartChallenge(ctx, "u1", "lesson-1", "ch-7"); !errors.Is(err, progress.ErrAlreadyStarted) {
		t.Fatalf("restart: %v", err)
	}
	for d := 1; d <= 7; d++ {
		_, err = svc.CompleteChallengeDay(ctx, "u1", "lesson-1", d)
		must(t, err)
	}
	snap, err = svc.CompleteChallenge(ctx, "u1", "lesson-1", 5)
	must(t, err)
	if snap.Progress.Challenge.Status != progress.ChallengeCompleted || snap.Breakdown.Overall != 60 {
		t.Fatalf("after rating: %+v", snap.Breakdown)
	}

	snap, err = svc.StartHabits(ctx, "u1", "lesson-1")
	must(t, err)
	if snap.Breakdown.Overall != 80 {
		t.Fatalf("after habits start: %d", snap.Breakdown.Overall)
	}
	if _, err := svc.ToggleHabit(ctx, "u1", "lesson-1", "nope", true); !errors.Is(err, progress.ErrUnknownHabit) {
		t.Fatalf("unknown habit: %v", err)
	}

	for _, ex := range []string{"ex-1", "ex-2"} {
		if _, err := svc.MarkExerciseComplete(ctx, "u1", "lesson-1", ex); !errors.Is(err, progress.ErrPrecondition) {
			t.Fatalf("complete before save: %v", err)
		}
		_, err = svc.SaveResponse(ctx, "u1", "lesson-1", ex, "answer for "+ex)
		must(t, err)
		snap, err = svc.MarkExerciseComplete(ctx, "u1", "lesson-1", ex)
		must(t, err)
	}
	if snap.Breakdown.Overall != 100 {
		t.Fatalf("final overall: %+v", snap.Breakdown)
	}

	resp, err := svc.Responses(ctx, "u1", "lesson-1")
	must(t, err)
	if resp["ex-2"].ResponseText != "answer for ex-2" {
		t.Fatalf("responses: %+v", resp)
	}

	fresh, err := svc.Refresh(ctx, "u1", "lesson-1")
	must(t, err)
	if fresh.Breakdown != snap.Breakdown {
		t.Fatalf("refresh %+v != last mutation %+v", fresh.Breakdown, snap.Breakdown)
	}

	types := sink.types()
	count := map[string]int{}
	for _, ty := range types {
		count[ty]++
	}
	if count["theory.read"] != 1 {
		t.Fatalf("theory.read emitted %d times: %v", count["theory.read"], types)
	}
	if count["challenge.day_completed"] != 7 || count["challenge.completed"] != 1 || count["quiz.submitted"] != 1 {
		t.Fatalf("events: %v", types)
	}
}

func TestServiceErrors(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	svc, _ := newService(t, progress.NewInMemoryStore(), clock, false)

	if _, err := svc.Refresh(ctx, "u1", "missing"); !errors.Is(err, progress.ErrNotFound) {
		t.Fatalf("missing lesson: %v", err)
	}
	if _, err := svc.Refresh(ctx, "", "lesson-1"); !errors.Is(err, progress.ErrValidation) {
		t.Fatalf("missing user: %v", err)
	}
	if _, err := svc.OpenQuiz(ctx, "u1", "empty"); !errors.Is(err, progress.ErrNotFound) {
		t.Fatalf("lesson without quiz: %v", err)
	}
	snap, err := svc.Refresh(ctx, "u1", "empty")
	must(t, err)
	if !snap.Breakdown.Exercises || snap.Breakdown.Overall != 20 {
		t.Fatalf("zero-exercise lesson: %+v", snap.Breakdown)
	}

	broken, _ := newService(t, failingStore{}, clock, false)
	if _, err := broken.MarkRead(ctx, "u1", "lesson-1"); !errors.Is(err, progress.ErrStore) {
		t.Fatalf("store failure: %v", err)
	}
}

func TestServiceEmitFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	svc, sink := newService(t, progress.NewInMemoryStore(), &fakeClock{now: time.Now()}, false)
	sink.err = errors.New("broker down")
	snap, err := svc.MarkRead(ctx, "u1", "lesson-1")
	if err != nil || !snap.Progress.TheoryCompleted {
		t.Fatalf("mark read: %v", err)
	}
}

func TestServiceHabitAutoRollover(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}

	for _, auto := range []bool{false, true} {
		store := progress.NewInMemoryStore()
		svc, _ := newService(t, store, clock, auto)
		clock.now = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
		_, err := svc.StartHabits(ctx, "u1", "lesson-1")
		must(t, err)
		for _, h := range []string{"h1", "h2", "h3", "h4", "h5"} {
			_, err = svc.ToggleHabit(ctx, "u1", "lesson-1", h, true)
			must(t, err)
		}
		clock.now = clock.now.Add(6 * time.Hour)
		snap, err := svc.Refresh(ctx, "u1", "lesson-1")
		must(t, err)
		h := snap.Progress.Habits
		if auto {
			if h.ProgressPercent() != 0 || h.StreakDays != 1 || h.Day != "2026-03-15" {
				t.Fatalf("auto rollover: %+v", h)
			}
			stored, _, _ := store.Get(ctx, "u1", "lesson-1")
			if stored.Habits.Day != "2026-03-15" {
				t.Fatal("rollover not persisted")
			}
			clock.now = clock.now.Add(24 * time.Hour)
			view, err := svc.View(ctx, "u1", "lesson-1")
			must(t, err)
			if view.Progress.Habits.Day != "2026-03-16" || view.Progress.Habits.StreakDays != 0 {
				t.Fatalf("view should show the pending rollover: %+v", view.Progress.Habits)
			}
			stored, _, _ = store.Get(ctx, "u1", "lesson-1")
			if stored.Habits.Day != "2026-03-15" {
				t.Fatalf("view persisted a rollover: %+v", stored.Habits)
			}
		} else if h.ProgressPercent() != 100 || h.Day != "2026-03-14" {
			t.Fatalf("manual mode must not roll over: %+v", h)
		}
	}
}
