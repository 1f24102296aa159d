package content

// Exercise is a free-text practice task of a lesson.
type Exercise struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Type            string `json:"type" yaml:"type"` // calculation, reflection, practice, ...
	Content         string `json:"content" yaml:"content"`
	Instructions    string `json:"instructions,omitempty" yaml:"instructions"`
	ExpectedOutcome string `json:"expected_outcome,omitempty" yaml:"expected_outcome"`
}

// Question is a single-choice question. Options are keyed a, b, c, ... in
// order and CorrectAnswerKey names one of them.
type Question struct {
	ID               string   `json:"id" yaml:"id"`
	Prompt           string   `json:"prompt" yaml:"prompt"`
	Options          []string `json:"options" yaml:"options"`
	CorrectAnswerKey string   `json:"correct_answer_key,omitempty" yaml:"correct"`
	Explanation      string   `json:"explanation,omitempty" yaml:"explanation"`
}

type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title,omitempty" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

type ChallengeDay struct {
	Day   int      `json:"day" yaml:"day"`
	Title string   `json:"title" yaml:"title"`
	Tasks []string `json:"tasks,omitempty" yaml:"tasks"`
}

// Challenge is a sequential multi-day program; its length is len(Days).
type Challenge struct {
	ID    string         `json:"id" yaml:"id"`
	Title string         `json:"title" yaml:"title"`
	Days  []ChallengeDay `json:"days" yaml:"days"`
}

type Lesson struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Theory    string     `json:"theory" yaml:"theory"`
	VideoID   string     `json:"video_id,omitempty" yaml:"video_id"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
	Quiz      *Quiz      `json:"quiz,omitempty" yaml:"quiz"`
	Challenge *Challenge `json:"challenge,omitempty" yaml:"challenge"`
	Habits    []string   `json:"habits,omitempty" yaml:"habits"`

	CreatedAt int64 `json:"created_at,omitempty" yaml:"-"`
}

// ExerciseIDs lists the exercise ids in catalogue order.
func (l Lesson) ExerciseIDs() []string {
	ids := make([]string, 0, len(l.Exercises))
	for _, e := range l.Exercises {
		ids = append(ids, e.ID)
	}
	return ids
}

// OptionKey is the answer key of the i-th option ("a" for 0).
func OptionKey(i int) string {
	return string(rune('a' + i))
}

// Public returns a copy without quiz answer keys or explanations.
func (l Lesson) Public() Lesson {
	out := l
	out.Exercises = append([]Exercise(nil), l.Exercises...)
	if l.Quiz != nil {
		q := *l.Quiz
		q.Questions = make([]Question, len(l.Quiz.Questions))
		for i, qu := range l.Quiz.Questions {
			qu.CorrectAnswerKey = ""
			qu.Explanation = ""
			q.Questions[i] = qu
		}
		out.Quiz = &q
	}
	return out
}
