package progress

import (
	"sort"
	"time"
)

// QuizStatus is the state of the current quiz attempt.
type QuizStatus string

const (
	QuizNotStarted QuizStatus = "not_started"
	QuizInProgress QuizStatus = "in_progress"
	QuizPassed     QuizStatus = "passed"
	QuizFailed     QuizStatus = "failed"
)

// ChallengeStatus is the state of a started challenge.
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
)

type ExerciseState struct {
	ResponseText   string `json:"response_text"`
	Saved          bool   `json:"saved"`
	MarkedComplete bool   `json:"marked_complete"`
}

type Question struct {
	ID               string   `json:"id"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	CorrectAnswerKey string   `json:"correct_answer_key"`
	Explanation      string   `json:"explanation,omitempty"`
}

type QuizResult struct {
	CorrectCount int  `json:"correct_count"`
	TotalCount   int  `json:"total_count"`
	Percentage   int  `json:"percentage"`
	Passed       bool `json:"passed"`
	// Correct is questionID -> answered correctly.
	Correct map[string]bool `json:"correct,omitempty"`
}

// QuizAttempt is the single current attempt of a lesson quiz. Prior attempts
// are not retained; Attempts counts how many were submitted.
type QuizAttempt struct {
	AttemptID string            `json:"attempt_id,omitempty"`
	QuizID    string            `json:"quiz_id,omitempty"`
	Status    QuizStatus        `json:"status"`
	Questions []Question        `json:"questions,omitempty"`
	Answers   map[string]string `json:"answers"`
	Result    *QuizResult       `json:"result,omitempty"`
	Attempts  int               `json:"attempts"`
}

type ChallengeProgress struct {
	ChallengeID   string          `json:"challenge_id"`
	DaysTotal     int             `json:"days_total"`
	StartedAt     time.Time       `json:"started_at"`
	CurrentDay    int             `json:"current_day"`
	CompletedDays []int           `json:"completed_days"`
	Status        ChallengeStatus `json:"status"`
	Rating        *int            `json:"rating,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

type HabitDayState struct {
	ActiveHabits []string        `json:"active_habits"`
	Checked      map[string]bool `json:"checked"`
	StreakDays   int             `json:"streak_days"`
	// CountedToday is set once the current day-session reached 100%.
	CountedToday bool `json:"counted_today"`
	// Day is the calendar date (YYYY-MM-DD) the session belongs to.
	Day string `json:"day"`
}

// LessonProgress is the per (user, lesson) aggregate. The overall percentage
// is never stored; see ComputeOverall.
type LessonProgress struct {
	UserID             string                   `json:"user_id"`
	LessonID           string                   `json:"lesson_id"`
	TheoryCompleted    bool                     `json:"theory_completed"`
	ExerciseCompletion map[string]ExerciseState `json:"exercise_completion"`
	Quiz               QuizAttempt              `json:"quiz"`
	Challenge          *ChallengeProgress       `json:"challenge,omitempty"`
	Habits             *HabitDayState           `json:"habits,omitempty"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// NewLessonProgress returns an empty record with one exercise entry per
// exercise id of the lesson.
func NewLessonProgress(userID, lessonID string, exerciseIDs []string) LessonProgress {
	ex := make(map[string]ExerciseState, len(exerciseIDs))
	for _, id := range exerciseIDs {
		ex[id] = ExerciseState{}
	}
	return LessonProgress{
		UserID:             userID,
		LessonID:           lessonID,
		ExerciseCompletion: ex,
		Quiz:               QuizAttempt{Status: QuizNotStarted, Answers: map[string]string{}},
	}
}

// Clone returns a deep copy so callers never alias stored maps and slices.
func (p LessonProgress) Clone() LessonProgress {
	out := p
	out.ExerciseCompletion = make(map[string]ExerciseState, len(p.ExerciseCompletion))
	for k, v := range p.ExerciseCompletion {
		out.ExerciseCompletion[k] = v
	}
	out.Quiz = p.Quiz.clone()
	if p.Challenge != nil {
		c := *p.Challenge
		c.CompletedDays = append([]int(nil), p.Challenge.CompletedDays...)
		if p.Challenge.Rating != nil {
			r := *p.Challenge.Rating
			c.Rating = &r
		}
		if p.Challenge.CompletedAt != nil {
			t := *p.Challenge.CompletedAt
			c.CompletedAt = &t
		}
		out.Challenge = &c
	}
	if p.Habits != nil {
		h := *p.Habits
		h.ActiveHabits = append([]string(nil), p.Habits.ActiveHabits...)
		h.Checked = make(map[string]bool, len(p.Habits.Checked))
		for k, v := range p.Habits.Checked {
			h.Checked[k] = v
		}
		out.Habits = &h
	}
	return out
}

func (q QuizAttempt) clone() QuizAttempt {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.Options = append([]string(nil), qu.Options...)
		out.Questions[i] = qu
	}
	if q.Questions == nil {
		out.Questions = nil
	}
	out.Answers = make(map[string]string, len(q.Answers))
	for k, v := range q.Answers {
		out.Answers[k] = v
	}
	if q.Result != nil {
		r := *q.Result
		if q.Result.Correct != nil {
			r.Correct = make(map[string]bool, len(q.Result.Correct))
			for k, v := range q.Result.Correct {
				r.Correct[k] = v
			}
		}
		out.Result = &r
	}
	return out
}

// normalize restores empty maps that JSON decoding leaves nil.
func (p *LessonProgress) normalize() {
	if p.ExerciseCompletion == nil {
		p.ExerciseCompletion = map[string]ExerciseState{}
	}
	if p.Quiz.Answers == nil {
		p.Quiz.Answers = map[string]string{}
	}
	if p.Quiz.Status == "" {
		p.Quiz.Status = QuizNotStarted
	}
	if p.Challenge != nil && p.Challenge.CompletedDays == nil {
		p.Challenge.CompletedDays = []int{}
	}
	if p.Habits != nil && p.Habits.Checked == nil {
		p.Habits.Checked = map[string]bool{}
	}
}

// percentOf rounds 100*n/total to the nearest integer but never reports 100
// unless n == total, so "100%" always means every item.
func percentOf(n, total int) int {
	if total <= 0 {
		return 0
	}
	pct := (200*n + total) / (2 * total)
	if pct >= 100 && n < total {
		return 99
	}
	return pct
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func insertSorted(xs []int, v int) []int {
	xs = append(xs, v)
	sort.Ints(xs)
	return xs
}
