// Package model defines shared data structures.
package model

import "time"

// DefaultQuestions is the number of questions in a session.
const DefaultQuestions = 10

// DefaultRevealDelay is how long correctness feedback stays on screen.
const DefaultRevealDelay = time.Second

// Config defines quiz session settings.
type Config struct {
	Source      string
	Questions   int
	RevealDelay time.Duration
}

// ImageHandle is opaque image data handed through to the presenter.
type ImageHandle []byte

// Question is a single yes/no quiz question. Immutable once received.
type Question struct {
	Text          string
	Image         ImageHandle
	CorrectAnswer bool
}

// Empty reports whether the question carries nothing to show.
func (q *Question) Empty() bool {
	return q == nil || (q.Text == "" && len(q.Image) == 0)
}

// QuizStep is the view model rendered for one question.
type QuizStep struct {
	Image    ImageHandle
	Question string
	Position string
}

// SessionState is a read-only snapshot of the running session.
type SessionState struct {
	CurrentIndex   int
	CorrectCount   int
	TotalQuestions int
}

// GameRecord is the result of one finished session.
type GameRecord struct {
	Correct  int
	Total    int
	PlayedAt time.Time
}

// Accuracy returns the record's accuracy as a percentage.
func (g GameRecord) Accuracy() float64 {
	if g.Total <= 0 {
		return 0
	}
	return float64(g.Correct) / float64(g.Total) * 100
}

// AggregateStatistics are cross-session running statistics.
type AggregateStatistics struct {
	BestGame      *GameRecord
	GamesCount    int
	TotalAccuracy float64

	// Running sums backing TotalAccuracy.
	TotalCorrect   int
	TotalQuestions int
}

// UpdateFunc derives the next aggregate and the finished game from the
// stored aggregate, which is nil before the first game. It may be called
// more than once when a store retries a conflicting update.
type UpdateFunc func(prev *AggregateStatistics) (AggregateStatistics, GameRecord)
