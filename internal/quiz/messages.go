package quiz

import "github.com/verte-zerg/moviequiz/internal/model"

// Every message carries the generation it was issued in. A reset bumps the
// generation, so anything still in flight from before is dropped on arrival.

// dataLoadedMsg is sent when the source finished loading.
type dataLoadedMsg struct {
	gen uint64
}

// loadFailedMsg is sent when the source failed to load.
type loadFailedMsg struct {
	gen uint64
	err error
}

// questionReadyMsg is sent when a requested question arrives.
type questionReadyMsg struct {
	gen      uint64
	question *model.Question
	err      error
}

// revealDoneMsg is sent when the feedback delay ends.
type revealDoneMsg struct {
	gen   uint64
	index int
}

// sessionRecordedMsg is sent when a finished session was persisted, or
// failed to be.
type sessionRecordedMsg struct {
	gen     uint64
	correct int
	agg     model.AggregateStatistics
	err     error
}
