package progress

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// StartHabits initializes the habit tracker with a fixed catalogue. Starting
// an existing tracker is a no-op and reports false.
func (p *LessonProgress) StartHabits(catalogue []string, now time.Time) (bool, error) {
	if p.Habits != nil {
		return false, nil
	}
	if len(catalogue) == 0 {
		return false, fmt.Errorf("%w: empty habit catalogue", ErrValidation)
	}
	seen := make(map[string]bool, len(catalogue))
	for _, h := range catalogue {
		if h == "" || seen[h] {
			return false, fmt.Errorf("%w: invalid habit catalogue", ErrValidation)
		}
		seen[h] = true
	}
	p.Habits = &HabitDayState{
		ActiveHabits: append([]string(nil), catalogue...),
		Checked:      map[string]bool{},
		Day:          now.Format(dayLayout),
	}
	return true, nil
}

// ToggleHabit sets one habit for the current day. The streak grows by one
// the first time the day reaches 100%; toggling off and on again the same
// day does not count twice.
func (p *LessonProgress) ToggleHabit(name string, checked bool) error {
	h := p.Habits
	if h == nil {
		return fmt.Errorf("%w: habit tracker not started", ErrPrecondition)
	}
	if !h.has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownHabit, name)
	}
	if h.Checked == nil {
		h.Checked = map[string]bool{}
	}
	h.Checked[name] = checked
	if h.ProgressPercent() == 100 && !h.CountedToday {
		h.StreakDays++
		h.CountedToday = true
	}
	return nil
}

// ResetForNewDay clears today's checks. The streak is left untouched.
func (p *LessonProgress) ResetForNewDay(now time.Time) error {
	h := p.Habits
	if h == nil {
		return fmt.Errorf("%w: habit tracker not started", ErrPrecondition)
	}
	h.Checked = map[string]bool{}
	h.CountedToday = false
	h.Day = now.Format(dayLayout)
	return nil
}

// RolloverIfNewDay resets the checks when now falls on a later calendar day
// than the session. A missed day, or a session day that never reached 100%,
// breaks the streak. It reports whether a rollover happened.
func (p *LessonProgress) RolloverIfNewDay(now time.Time) bool {
	h := p.Habits
	if h == nil {
		return false
	}
	today := now.Format(dayLayout)
	if h.Day == "" {
		h.Day = today
		return false
	}
	last, err := time.ParseInLocation(dayLayout, h.Day, now.Location())
	if err != nil {
		h.Day = today
		return false
	}
	cur, _ := time.ParseInLocation(dayLayout, today, now.Location())
	if !cur.After(last) {
		return false
	}
	gap := int(cur.Sub(last).Hours()/24 + 0.5)
	if !h.CountedToday || gap > 1 {
		h.StreakDays = 0
	}
	h.Checked = map[string]bool{}
	h.CountedToday = false
	h.Day = today
	return true
}

// ProgressPercent is the share of habits checked today.
func (h *HabitDayState) ProgressPercent() int {
	if h == nil {
		return 0
	}
	n := 0
	for _, name := range h.ActiveHabits {
		if h.Checked[name] {
			n++
		}
	}
	return percentOf(n, len(h.ActiveHabits))
}

func (h *HabitDayState) has(name string) bool {
	for _, a := range h.ActiveHabits {
		if a == name {
			return true
		}
	}
	return false
}
