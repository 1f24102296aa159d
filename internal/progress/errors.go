package progress

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the trackers matches exactly one of
// these through errors.Is. None of them is fatal to the process.
var (
	ErrValidation       = errors.New("validation error")
	ErrPrecondition     = errors.New("precondition failed")
	ErrOutOfOrder       = errors.New("out of order")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrAlreadyStarted   = errors.New("already started")
	ErrIncomplete       = errors.New("incomplete submission")
	ErrNotEligible      = errors.New("not eligible for completion")
	ErrUnknownHabit     = errors.New("unknown habit")
	ErrUnknownExercise  = errors.New("unknown exercise")
	ErrStore            = errors.New("store error")
	ErrNotFound         = errors.New("not found")
)

// Specific errors wrapping their kind.
var (
	ErrEmptyResponse   = fmt.Errorf("%w: empty response", ErrValidation)
	ErrInvalidRating   = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	ErrUnknownQuestion = fmt.Errorf("%w: unknown question", ErrValidation)
	ErrNotSaved        = fmt.Errorf("%w: not saved", ErrPrecondition)
)

// StoreError wraps a persistence failure. It matches ErrStore.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store: " + e.Op
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
