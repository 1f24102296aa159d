package progress

// BucketPoints is the weight of each of the five completion buckets.
const BucketPoints = 20

// Breakdown is the per-bucket view rendered as badges next to the tabs.
type Breakdown struct {
	Theory    bool `json:"theory"`
	Exercises bool `json:"exercises"`
	Quiz      bool `json:"quiz"`
	Challenge bool `json:"challenge"`
	Habits    bool `json:"habits"`
	Overall   int  `json:"overall"`
}

// ComputeBreakdown evaluates every bucket predicate. It only reads p.
//
// The challenge bucket is granted once the challenge is started (active or
// completed), and the habits bucket once the tracker exists; neither needs
// full completion.
func ComputeBreakdown(p LessonProgress) Breakdown {
	b := Breakdown{
		Theory:    p.TheoryCompleted,
		Exercises: p.exercisesDone(),
		Quiz:      p.quizPassed(),
		Challenge: p.Challenge != nil && (p.Challenge.Status == ChallengeActive || p.Challenge.Status == ChallengeCompleted),
		Habits:    p.Habits != nil,
	}
	for _, ok := range []bool{b.Theory, b.Exercises, b.Quiz, b.Challenge, b.Habits} {
		if ok {
			b.Overall += BucketPoints
		}
	}
	return b
}

// ComputeOverall returns the overall completion percentage, a multiple of 20
// in [0, 100].
func ComputeOverall(p LessonProgress) int {
	return ComputeBreakdown(p).Overall
}
