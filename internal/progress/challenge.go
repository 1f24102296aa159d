package progress

import (
	"fmt"
	"time"
)

// StartChallenge creates the challenge record with day 1 current. A
// challenge can be started once per (user, lesson); there is no re-entry
// after completion.
func (p *LessonProgress) StartChallenge(challengeID string, daysTotal int, now time.Time) error {
	if p.Challenge != nil {
		return fmt.Errorf("challenge %q: %w", p.Challenge.ChallengeID, ErrAlreadyStarted)
	}
	if challengeID == "" {
		return fmt.Errorf("%w: challenge id required", ErrValidation)
	}
	if daysTotal < 1 {
		return fmt.Errorf("%w: challenge %q has no days", ErrValidation, challengeID)
	}
	p.Challenge = &ChallengeProgress{
		ChallengeID:   challengeID,
		DaysTotal:     daysTotal,
		StartedAt:     now.UTC(),
		CurrentDay:    1,
		CompletedDays: []int{},
		Status:        ChallengeActive,
	}
	return nil
}

// CompleteDay marks day d done. Days cannot be skipped and a day cannot be
// completed twice; the call is not idempotent.
func (p *LessonProgress) CompleteDay(day int) error {
	c := p.Challenge
	if c == nil {
		return fmt.Errorf("%w: challenge not started", ErrPrecondition)
	}
	if c.Status == ChallengeCompleted {
		return fmt.Errorf("challenge %q: %w", c.ChallengeID, ErrAlreadyCompleted)
	}
	if day < 1 {
		return fmt.Errorf("%w: day %d outside 1..%d", ErrValidation, day, c.DaysTotal)
	}
	if containsInt(c.CompletedDays, day) {
		return fmt.Errorf("day %d: %w", day, ErrAlreadyCompleted)
	}
	if day > c.CurrentDay {
		return fmt.Errorf("day %d before day %d: %w", day, c.CurrentDay, ErrOutOfOrder)
	}
	c.CompletedDays = insertSorted(c.CompletedDays, day)
	c.CurrentDay = min(day+1, c.DaysTotal)
	return nil
}

// EligibleForCompletion reports whether every day is done and the rating
// step is still open.
func (c *ChallengeProgress) EligibleForCompletion() bool {
	if c == nil {
		return false
	}
	return len(c.CompletedDays) == c.DaysTotal && c.Status != ChallengeCompleted
}

// CompleteChallenge records the final rating and closes the challenge. The
// record is immutable afterwards.
func (p *LessonProgress) CompleteChallenge(rating int, now time.Time) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d: %w", rating, ErrInvalidRating)
	}
	c := p.Challenge
	if c == nil {
		return fmt.Errorf("%w: challenge not started", ErrNotEligible)
	}
	if c.Status == ChallengeCompleted {
		return fmt.Errorf("challenge %q: %w", c.ChallengeID, ErrAlreadyCompleted)
	}
	if !c.EligibleForCompletion() {
		return fmt.Errorf("%w: %d of %d days completed", ErrNotEligible, len(c.CompletedDays), c.DaysTotal)
	}
	r := rating
	t := now.UTC()
	c.Rating = &r
	c.CompletedAt = &t
	c.Status = ChallengeCompleted
	return nil
}
