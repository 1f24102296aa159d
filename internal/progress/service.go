package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/numerology-progress/internal/content"
	"github.com/mind-engage/numerology-progress/internal/logger"
)

// Event is emitted after every persisted mutation.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     string         `json:"user_id"`
	LessonID   string         `json:"lesson_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type EventSink interface {
	Emit(ctx context.Context, e Event) error
}

type Options struct {
	Clock Clock
	// StoreTimeout bounds every call when the caller's context has no deadline.
	StoreTimeout time.Duration
	// HabitAutoRollover resets habit checks when the clock crosses a calendar
	// day. Off by default: the new day is started by the student.
	HabitAutoRollover bool
	Events            EventSink
	Log               *logger.Logger
	NewID             func() string
}

// Snapshot is the authoritative record plus its derived breakdown.
type Snapshot struct {
	Progress  LessonProgress `json:"progress"`
	Breakdown Breakdown      `json:"breakdown"`
}

// Service serializes load, mutate, persist and emit for one (user, lesson)
// record. Callers are expected to issue one mutation at a time per key and
// to call Refresh after a mutation rather than trust client-held state.
type Service struct {
	store   Store
	lessons content.Provider
	opts    Options
}

func NewService(store Store, lessons content.Provider, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{store: store, lessons: lessons, opts: opts}
}

type mutation func(p *LessonProgress, l content.Lesson) (changed bool, data map[string]any, err error)

// Refresh returns the current record, or an empty one if nothing was saved
// yet. With auto rollover enabled a crossed day boundary is persisted.
func (s *Service) Refresh(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "", func(*LessonProgress, content.Lesson) (bool, map[string]any, error) {
		return false, nil, nil
	})
}

// View returns the record as Refresh would but never writes it. A pending
// habit rollover shows in the result without being persisted; other users'
// records are read this way.
func (s *Service) View(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.read(ctx, userID, lessonID)
}

// MarkRead is idempotent and safe to retry.
func (s *Service) MarkRead(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "theory.read", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		return p.MarkRead(), nil, nil
	})
}

func (s *Service) SaveResponse(ctx context.Context, userID, lessonID, exerciseID, text string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "exercise.saved", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.SaveResponse(exerciseID, text); err != nil {
			return false, nil, err
		}
		return true, map[string]any{"exercise_id": exerciseID}, nil
	})
}

// MarkExerciseComplete is not idempotent; see LessonProgress.MarkComplete.
func (s *Service) MarkExerciseComplete(ctx context.Context, userID, lessonID, exerciseID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "exercise.completed", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.MarkComplete(exerciseID); err != nil {
			return false, nil, err
		}
		return true, map[string]any{"exercise_id": exerciseID}, nil
	})
}

// Responses returns every exercise state of the record without side effects.
func (s *Service) Responses(ctx context.Context, userID, lessonID string) (map[string]ExerciseState, error) {
	snap, err := s.read(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	return snap.Progress.Responses(), nil
}

func (s *Service) OpenQuiz(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "quiz.opened", func(p *LessonProgress, l content.Lesson) (bool, map[string]any, error) {
		if l.Quiz == nil {
			return false, nil, fmt.Errorf("%w: lesson %q has no quiz", ErrNotFound, l.ID)
		}
		created, err := p.OpenQuiz(l.Quiz.ID, s.opts.NewID(), questionsFrom(l.Quiz))
		if err != nil {
			return false, nil, err
		}
		return created, map[string]any{"quiz_id": l.Quiz.ID, "attempt_id": p.Quiz.AttemptID}, nil
	})
}

func (s *Service) RecordAnswer(ctx context.Context, userID, lessonID, questionID, choiceKey string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "quiz.answered", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.RecordAnswer(questionID, choiceKey); err != nil {
			return false, nil, err
		}
		return true, map[string]any{"question_id": questionID, "attempt_id": p.Quiz.AttemptID}, nil
	})
}

// SubmitQuiz grades the current attempt. The graded result is in
// Snapshot.Progress.Quiz.Result.
func (s *Service) SubmitQuiz(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "quiz.submitted", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		res, err := p.Submit()
		if err != nil {
			return false, nil, err
		}
		return true, map[string]any{
			"attempt_id":    p.Quiz.AttemptID,
			"correct_count": res.CorrectCount,
			"total_count":   res.TotalCount,
			"percentage":    res.Percentage,
			"passed":        res.Passed,
		}, nil
	})
}

func (s *Service) ResetQuiz(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "quiz.reset", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.ResetQuiz(s.opts.NewID()); err != nil {
			return false, nil, err
		}
		return true, map[string]any{"attempt_id": p.Quiz.AttemptID}, nil
	})
}

func (s *Service) StartChallenge(ctx context.Context, userID, lessonID, challengeID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "challenge.started", func(p *LessonProgress, l content.Lesson) (bool, map[string]any, error) {
		if l.Challenge == nil || l.Challenge.ID != challengeID {
			return false, nil, fmt.Errorf("%w: lesson %q has no challenge %q", ErrValidation, l.ID, challengeID)
		}
		if err := p.StartChallenge(challengeID, len(l.Challenge.Days), s.opts.Clock.Now()); err != nil {
			return false, nil, err
		}
		return true, map[string]any{"challenge_id": challengeID, "days_total": len(l.Challenge.Days)}, nil
	})
}

// CompleteChallengeDay is not idempotent; a repeated day fails with
// ErrAlreadyCompleted.
func (s *Service) CompleteChallengeDay(ctx context.Context, userID, lessonID string, day int) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "challenge.day_completed", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.CompleteDay(day); err != nil {
			return false, nil, err
		}
		return true, map[string]any{
			"challenge_id": p.Challenge.ChallengeID,
			"day":          day,
			"eligible":     p.Challenge.EligibleForCompletion(),
		}, nil
	})
}

func (s *Service) CompleteChallenge(ctx context.Context, userID, lessonID string, rating int) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "challenge.completed", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.CompleteChallenge(rating, s.opts.Clock.Now()); err != nil {
			return false, nil, err
		}
		return true, map[string]any{"challenge_id": p.Challenge.ChallengeID, "rating": rating}, nil
	})
}

func (s *Service) StartHabits(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "habits.started", func(p *LessonProgress, l content.Lesson) (bool, map[string]any, error) {
		created, err := p.StartHabits(l.Habits, s.opts.Clock.Now())
		if err != nil {
			return false, nil, err
		}
		return created, map[string]any{"habits": len(l.Habits)}, nil
	})
}

func (s *Service) ToggleHabit(ctx context.Context, userID, lessonID, habit string, checked bool) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "habit.toggled", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.ToggleHabit(habit, checked); err != nil {
			return false, nil, err
		}
		return true, map[string]any{
			"habit":       habit,
			"checked":     checked,
			"percent":     p.Habits.ProgressPercent(),
			"streak_days": p.Habits.StreakDays,
		}, nil
	})
}

func (s *Service) ResetHabitsForNewDay(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	return s.apply(ctx, userID, lessonID, "habits.new_day", func(p *LessonProgress, _ content.Lesson) (bool, map[string]any, error) {
		if err := p.ResetForNewDay(s.opts.Clock.Now()); err != nil {
			return false, nil, err
		}
		return true, map[string]any{"day": p.Habits.Day}, nil
	})
}

// read loads without persisting anything.
func (s *Service) read(ctx context.Context, userID, lessonID string) (Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, _, err := s.load(ctx, userID, lessonID)
	if err != nil {
		return Snapshot{}, err
	}
	if s.opts.HabitAutoRollover {
		p.RolloverIfNewDay(s.opts.Clock.Now())
	}
	return snapshot(p), nil
}

func (s *Service) apply(ctx context.Context, userID, lessonID, evType string, fn mutation) (Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, l, err := s.load(ctx, userID, lessonID)
	if err != nil {
		return Snapshot{}, err
	}
	now := s.opts.Clock.Now()
	rolled := s.opts.HabitAutoRollover && p.RolloverIfNewDay(now)

	changed, data, err := fn(&p, l)
	if err != nil {
		return Snapshot{}, err
	}
	if !changed && !rolled {
		return snapshot(p), nil
	}
	p.UpdatedAt = now.UTC()
	if err := s.store.Put(ctx, p); err != nil {
		return Snapshot{}, storeErr("put", err)
	}
	if changed && evType != "" {
		s.emit(ctx, Event{
			ID:         s.opts.NewID(),
			Type:       evType,
			UserID:     userID,
			LessonID:   lessonID,
			Data:       data,
			OccurredAt: p.UpdatedAt,
		})
	}
	return snapshot(p), nil
}

func (s *Service) load(ctx context.Context, userID, lessonID string) (LessonProgress, content.Lesson, error) {
	if userID == "" || lessonID == "" {
		return LessonProgress{}, content.Lesson{}, fmt.Errorf("%w: user and lesson required", ErrValidation)
	}
	l, err := s.lessons.Lesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return LessonProgress{}, content.Lesson{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return LessonProgress{}, content.Lesson{}, storeErr("lesson", err)
	}
	p, ok, err := s.store.Get(ctx, userID, lessonID)
	if err != nil {
		return LessonProgress{}, content.Lesson{}, storeErr("get", err)
	}
	if !ok {
		return NewLessonProgress(userID, lessonID, l.ExerciseIDs()), l, nil
	}
	p.normalize()
	for _, id := range l.ExerciseIDs() {
		if _, ok := p.ExerciseCompletion[id]; !ok {
			p.ExerciseCompletion[id] = ExerciseState{}
		}
	}
	return p, l, nil
}

func (s *Service) emit(ctx context.Context, e Event) {
	if s.opts.Events == nil {
		return
	}
	if err := s.opts.Events.Emit(ctx, e); err != nil && s.opts.Log != nil {
		s.opts.Log.Warn("progress event not emitted", "type", e.Type, "user_id", e.UserID, "lesson_id", e.LessonID, "error", err)
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

func snapshot(p LessonProgress) Snapshot {
	return Snapshot{Progress: p, Breakdown: ComputeBreakdown(p)}
}

func questionsFrom(q *content.Quiz) []Question {
	out := make([]Question, 0, len(q.Questions))
	for _, cq := range q.Questions {
		out = append(out, Question{
			ID:               cq.ID,
			Prompt:           cq.Prompt,
			Options:          cq.Options,
			CorrectAnswerKey: cq.CorrectAnswerKey,
			Explanation:      cq.Explanation,
		})
	}
	return out
}
