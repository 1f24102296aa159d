package syncx

import (
	"context"
	"errors"

	"github.com/mind-engage/numerology-progress/internal/progress"
)

// Fanout emits to every sink and joins their errors.
type Fanout []progress.EventSink

func (f Fanout) Emit(ctx context.Context, e progress.Event) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
