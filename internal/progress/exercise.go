package progress

import (
	"fmt"
	"strings"
)

// SaveResponse stores the student's free-text response for an exercise.
// Whitespace-only text is rejected. Saving again overwrites the text and
// keeps an earlier completion mark.
func (p *LessonProgress) SaveResponse(exerciseID, text string) error {
	st, ok := p.ExerciseCompletion[exerciseID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExercise, exerciseID)
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	st.ResponseText = text
	st.Saved = true
	p.ExerciseCompletion[exerciseID] = st
	return nil
}

// MarkComplete marks an exercise done. It requires a previously saved
// response and is not idempotent: a second call fails with
// ErrAlreadyCompleted, so callers must not retry it blindly.
func (p *LessonProgress) MarkComplete(exerciseID string) error {
	st, ok := p.ExerciseCompletion[exerciseID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExercise, exerciseID)
	}
	if !st.Saved {
		return fmt.Errorf("exercise %q: %w", exerciseID, ErrNotSaved)
	}
	if st.MarkedComplete {
		return fmt.Errorf("exercise %q: %w", exerciseID, ErrAlreadyCompleted)
	}
	st.MarkedComplete = true
	p.ExerciseCompletion[exerciseID] = st
	return nil
}

// Responses returns a copy of every exercise state keyed by exercise id.
func (p *LessonProgress) Responses() map[string]ExerciseState {
	out := make(map[string]ExerciseState, len(p.ExerciseCompletion))
	for k, v := range p.ExerciseCompletion {
		out[k] = v
	}
	return out
}

func (p *LessonProgress) exercisesDone() bool {
	for _, st := range p.ExerciseCompletion {
		if !st.MarkedComplete {
			return false
		}
	}
	return true
}
