package progress

import (
	"fmt"
	"strings"
)

// OpenQuiz starts the first attempt by copying the lesson's questions into
// the record. Opening a quiz that already has an attempt is a no-op; the
// return value reports whether a new attempt was created.
func (p *LessonProgress) OpenQuiz(quizID, attemptID string, questions []Question) (bool, error) {
	if p.Quiz.Status != QuizNotStarted && p.Quiz.Status != "" {
		return false, nil
	}
	if len(questions) == 0 {
		return false, fmt.Errorf("%w: quiz %q has no questions", ErrValidation, quizID)
	}
	qs := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	p.Quiz = QuizAttempt{
		AttemptID: attemptID,
		QuizID:    quizID,
		Status:    QuizInProgress,
		Questions: qs,
		Answers:   map[string]string{},
	}
	return true, nil
}

// RecordAnswer stores or overwrites the answer for one question. Only an
// in-progress attempt accepts answers.
func (p *LessonProgress) RecordAnswer(questionID, choiceKey string) error {
	if p.Quiz.Status != QuizInProgress {
		return fmt.Errorf("%w: quiz is %s", ErrPrecondition, p.Quiz.Status)
	}
	if p.Quiz.question(questionID) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	choiceKey = strings.TrimSpace(choiceKey)
	if choiceKey == "" {
		return fmt.Errorf("%w: empty choice for %q", ErrValidation, questionID)
	}
	if p.Quiz.Answers == nil {
		p.Quiz.Answers = map[string]string{}
	}
	p.Quiz.Answers[questionID] = choiceKey
	return nil
}

// Submit grades the attempt. Every question must be answered. Only a perfect
// score passes; partial credit is reported but never passes.
func (p *LessonProgress) Submit() (QuizResult, error) {
	q := &p.Quiz
	if q.Status != QuizInProgress {
		return QuizResult{}, fmt.Errorf("%w: quiz is %s", ErrPrecondition, q.Status)
	}
	answered := 0
	for _, qu := range q.Questions {
		if _, ok := q.Answers[qu.ID]; ok {
			answered++
		}
	}
	if answered < len(q.Questions) {
		return QuizResult{}, fmt.Errorf("%w: %d of %d questions answered", ErrIncomplete, answered, len(q.Questions))
	}

	res := QuizResult{TotalCount: len(q.Questions), Correct: make(map[string]bool, len(q.Questions))}
	for _, qu := range q.Questions {
		ok := q.Answers[qu.ID] == qu.CorrectAnswerKey
		res.Correct[qu.ID] = ok
		if ok {
			res.CorrectCount++
		}
	}
	res.Percentage = percentOf(res.CorrectCount, res.TotalCount)
	res.Passed = res.Percentage == 100

	q.Result = &res
	q.Attempts++
	if res.Passed {
		q.Status = QuizPassed
	} else {
		q.Status = QuizFailed
	}
	return res, nil
}

// ResetQuiz clears answers and result and starts a new attempt. The UI only
// offers it after a failed attempt but a passed attempt may be reset too.
func (p *LessonProgress) ResetQuiz(attemptID string) error {
	if p.Quiz.Status == QuizNotStarted || p.Quiz.Status == "" {
		return fmt.Errorf("%w: quiz not opened", ErrPrecondition)
	}
	p.Quiz.AttemptID = attemptID
	p.Quiz.Answers = map[string]string{}
	p.Quiz.Result = nil
	p.Quiz.Status = QuizInProgress
	return nil
}

func (p *LessonProgress) quizPassed() bool {
	return p.Quiz.Result != nil && p.Quiz.Result.Passed
}

func (q *QuizAttempt) question(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// Redacted returns a copy safe to hand to the student: answer keys and
// explanations are hidden until the attempt is graded.
func (p LessonProgress) Redacted() LessonProgress {
	out := p.Clone()
	if out.Quiz.Status == QuizPassed || out.Quiz.Status == QuizFailed {
		return out
	}
	for i := range out.Quiz.Questions {
		out.Quiz.Questions[i].CorrectAnswerKey = ""
		out.Quiz.Questions[i].Explanation = ""
	}
	return out
}
