package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("lesson not found")
	ErrInvalid  = errors.New("invalid lesson")
)

// Validate checks the invariants the progress engine relies on: unique ids,
// answer keys that name an option, and a gap-free day numbering.
func (l Lesson) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: id required", ErrInvalid)
	}
	seen := map[string]bool{}
	for _, e := range l.Exercises {
		if e.ID == "" || seen[e.ID] {
			return fmt.Errorf("%w: lesson %s: bad or duplicate exercise id %q", ErrInvalid, l.ID, e.ID)
		}
		seen[e.ID] = true
	}
	if l.Quiz != nil {
		if l.Quiz.ID == "" || len(l.Quiz.Questions) == 0 {
			return fmt.Errorf("%w: lesson %s: quiz needs an id and at least one question", ErrInvalid, l.ID)
		}
		qseen := map[string]bool{}
		for _, q := range l.Quiz.Questions {
			if q.ID == "" || qseen[q.ID] {
				return fmt.Errorf("%w: lesson %s: bad or duplicate question id %q", ErrInvalid, l.ID, q.ID)
			}
			qseen[q.ID] = true
			if !validKey(q.CorrectAnswerKey, len(q.Options)) {
				return fmt.Errorf("%w: lesson %s: question %s: answer key %q not among %d options",
					ErrInvalid, l.ID, q.ID, q.CorrectAnswerKey, len(q.Options))
			}
		}
	}
	if l.Challenge != nil {
		if l.Challenge.ID == "" || len(l.Challenge.Days) == 0 {
			return fmt.Errorf("%w: lesson %s: challenge needs an id and at least one day", ErrInvalid, l.ID)
		}
		for i, d := range l.Challenge.Days {
			if d.Day != i+1 {
				return fmt.Errorf("%w: lesson %s: challenge day %d out of sequence", ErrInvalid, l.ID, d.Day)
			}
		}
	}
	hseen := map[string]bool{}
	for _, h := range l.Habits {
		if strings.TrimSpace(h) == "" || hseen[h] {
			return fmt.Errorf("%w: lesson %s: bad or duplicate habit %q", ErrInvalid, l.ID, h)
		}
		hseen[h] = true
	}
	return nil
}

func validKey(key string, n int) bool {
	for i := 0; i < n; i++ {
		if OptionKey(i) == key {
			return true
		}
	}
	return false
}
