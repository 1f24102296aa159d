package progress

// MarkRead flags the lesson theory as read. It is idempotent and reports
// whether the flag changed.
func (p *LessonProgress) MarkRead() bool {
	if p.TheoryCompleted {
		return false
	}
	p.TheoryCompleted = true
	return true
}
