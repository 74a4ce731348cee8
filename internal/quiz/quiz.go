// Package quiz runs a fixed-length yes/no quiz session.
//
// The Controller is a state machine driven from a single goroutine (the
// Bubble Tea update loop). Blocking work is returned as tea.Cmds whose
// results come back as messages through Controller.Update.
package quiz

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/moviequiz/internal/model"
)

var (
	// ErrLoad marks a failure of the question source.
	ErrLoad = errors.New("failed to load questions")
	// ErrProtocol marks an out-of-order or unsolicited delivery. It is only logged.
	ErrProtocol = errors.New("unexpected delivery")
)

// QuestionSource supplies questions. Both calls may block; the Controller
// never runs them on the update loop.
type QuestionSource interface {
	// LoadData prepares the source, for example by fetching a question list.
	LoadData(ctx context.Context) error
	// NextQuestion returns the next question. A nil question is ignored.
	NextQuestion(ctx context.Context) (*model.Question, error)
}

// StatsRecorder folds a finished session into the all-time statistics.
type StatsRecorder interface {
	RecordSession(ctx context.Context, correct, total int, now time.Time) (model.AggregateStatistics, error)
}

// Presenter renders what the Controller tells it to. It never calls back
// except through Alert.OnConfirm and Controller.SubmitAnswer.
type Presenter interface {
	RenderStep(step model.QuizStep)
	SetInputEnabled(enabled bool)
	ShowCorrectnessCue(correct bool)
	ClearCorrectnessCue()
	ShowBusyIndicator(visible bool)
	ShowDialog(alert Alert)
}

// Alert is a modal dialog with a single confirm button.
type Alert struct {
	Title      string
	Message    string
	ButtonText string
	OnConfirm  func() tea.Cmd
}

// Phase is the Controller's current state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseAwaitingQuestion
	PhaseAwaitingAnswer
	PhaseRevealing
	PhaseSummarizing
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseAwaitingQuestion:
		return "awaiting-question"
	case PhaseAwaitingAnswer:
		return "awaiting-answer"
	case PhaseRevealing:
		return "revealing"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of the Controller.
type Snapshot struct {
	model.SessionState
	Phase        Phase
	HasQuestion  bool
	InputEnabled bool
}
