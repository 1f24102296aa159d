package progress

import (
	"errors"
	"testing"
)

func TestExerciseSaveThenComplete(t *testing.T) {
	p := NewLessonProgress("u1", "l1", []string{"ex-1", "ex-2"})

	for _, txt := range []string{"", "   ", "\n\t"} {
		if err := p.SaveResponse("ex-1", txt); !errors.Is(err, ErrValidation) || !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("save %q: %v", txt, err)
		}
	}
	if err := p.MarkComplete("ex-1"); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("complete before save: %v", err)
	}
	if err := p.SaveResponse("ex-9", "x"); !errors.Is(err, ErrUnknownExercise) {
		t.Fatalf("unknown: %v", err)
	}
	if err := p.MarkComplete("ex-9"); !errors.Is(err, ErrUnknownExercise) {
		t.Fatalf("unknown complete: %v", err)
	}
	if err := p.SaveResponse("ex-1", "My life path is 7"); err != nil {
		t.Fatal(err)
	}
	if err := p.MarkComplete("ex-1"); err != nil {
		t.Fatal(err)
	}
	if err := p.MarkComplete("ex-1"); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second complete: %v", err)
	}
	if err := p.SaveResponse("ex-1", "edited"); err != nil {
		t.Fatal(err)
	}
	all := p.Responses()
	if st := all["ex-1"]; st.ResponseText != "edited" || !st.Saved || !st.MarkedComplete {
		t.Fatalf("ex-1 = %+v", st)
	}
	if st := all["ex-2"]; st.Saved {
		t.Fatalf("ex-2 = %+v", st)
	}
	all["ex-2"] = ExerciseState{MarkedComplete: true}
	if p.ExerciseCompletion["ex-2"].MarkedComplete {
		t.Fatal("Responses must return a copy")
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	p := NewLessonProgress("u1", "l1", nil)
	if !p.MarkRead() {
		t.Fatal("first call should change state")
	}
	if p.MarkRead() {
		t.Fatal("second call should be a no-op")
	}
	if !p.TheoryCompleted {
		t.Fatal("theory not completed")
	}
}
