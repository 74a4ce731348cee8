package quiz

// ScoreTracker counts correct answers within the current session.
type ScoreTracker struct {
	correct int
}

// Reset sets the correct count back to zero.
func (s *ScoreTracker) Reset() {
	s.correct = 0
}

// RecordAnswer counts the answer if it was correct.
func (s *ScoreTracker) RecordAnswer(correct bool) {
	if correct {
		s.correct++
	}
}

// CurrentScore returns the number of correct answers so far.
func (s *ScoreTracker) CurrentScore() int {
	return s.correct
}
