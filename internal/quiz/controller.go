package quiz

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/verte-zerg/moviequiz/internal/logger"
	"github.com/verte-zerg/moviequiz/internal/model"
	"github.com/verte-zerg/moviequiz/internal/stats"
)

const (
	summaryTitle  = "This round is over!"
	summaryButton = "Play again"
	errorTitle    = "Error"
	errorButton   = "Try again"
	staleNotice   = "(statistics could not be saved)"

	defaultPersistTimeout = 5 * time.Second
)

// Options configure a Controller. Zero values fall back to defaults.
type Options struct {
	Questions   int
	RevealDelay time.Duration
	// PersistTimeout bounds recording a finished session.
	PersistTimeout time.Duration
	// Initial is the aggregate loaded at startup.
	Initial model.AggregateStatistics
	Now     func() time.Time
	Context context.Context
	Log     *logger.Logger
}

// Controller sequences questions, scores answers and finishes sessions.
// It is not safe for concurrent use; drive it from one goroutine.
type Controller struct {
	source QuestionSource
	view   Presenter
	stats  StatsRecorder

	total   int
	delay   time.Duration
	persist time.Duration
	now     func() time.Time
	ctx     context.Context
	baseLog *logger.Logger
	log     *logger.Logger

	phase        Phase
	index        int
	score        ScoreTracker
	current      *model.Question
	gen          uint64
	pending      bool
	loaded       bool
	inputEnabled bool
	last         model.AggregateStatistics
}

// NewController wires a Controller to its collaborators.
func NewController(source QuestionSource, view Presenter, recorder StatsRecorder, opts Options) *Controller {
	c := &Controller{
		source:       source,
		view:         view,
		stats:        recorder,
		total:        opts.Questions,
		delay:        opts.RevealDelay,
		persist:      opts.PersistTimeout,
		now:          opts.Now,
		ctx:          opts.Context,
		baseLog:      opts.Log,
		last:         opts.Initial,
		inputEnabled: true,
	}
	if c.total <= 0 {
		c.total = model.DefaultQuestions
	}
	if c.delay <= 0 {
		c.delay = model.DefaultRevealDelay
	}
	if c.persist <= 0 {
		c.persist = defaultPersistTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	if c.baseLog == nil {
		c.baseLog = logger.Nop()
	}
	c.log = c.baseLog
	return c
}

// Start issues the initial load. It only has an effect once.
func (c *Controller) Start() tea.Cmd {
	if c.phase != PhaseIdle {
		return nil
	}
	c.beginSession()
	return c.load()
}

// Update handles source deliveries and timed transitions. Unknown, stale and
// unsolicited messages are dropped.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dataLoadedMsg:
		return c.handleDataLoaded(msg)
	case loadFailedMsg:
		return c.handleLoadFailed(msg)
	case questionReadyMsg:
		return c.handleQuestionReady(msg)
	case revealDoneMsg:
		return c.handleRevealDone(msg)
	case sessionRecordedMsg:
		return c.handleSessionRecorded(msg)
	}
	return nil
}

// SubmitAnswer scores the player's answer to the current question. It is a
// no-op unless a question is on screen and waiting for an answer.
func (c *Controller) SubmitAnswer(answer bool) tea.Cmd {
	if c.phase != PhaseAwaitingAnswer || c.current == nil {
		return nil
	}
	c.setInput(false)
	correct := answer == c.current.CorrectAnswer
	c.score.RecordAnswer(correct)
	c.view.ShowCorrectnessCue(correct)
	c.phase = PhaseRevealing
	c.log.Debug("answer recorded", "index", c.index, "correct", correct)

	gen, index := c.gen, c.index
	return tea.Tick(c.delay, func(time.Time) tea.Msg {
		return revealDoneMsg{gen: gen, index: index}
	})
}

// Reset force-restarts the session. Pending transitions and deliveries from
// the abandoned session are discarded when they arrive.
func (c *Controller) Reset() tea.Cmd {
	c.beginSession()
	c.view.ClearCorrectnessCue()
	c.setInput(true)
	if !c.loaded {
		return c.load()
	}
	return c.requestQuestion()
}

// State returns a snapshot of the session.
func (c *Controller) State() Snapshot {
	return Snapshot{
		SessionState: model.SessionState{
			CurrentIndex:   c.index,
			CorrectCount:   c.score.CurrentScore(),
			TotalQuestions: c.total,
		},
		Phase:        c.phase,
		HasQuestion:  c.current != nil,
		InputEnabled: c.inputEnabled,
	}
}

// Statistics returns the last known all-time statistics.
func (c *Controller) Statistics() model.AggregateStatistics {
	return c.last
}

func (c *Controller) beginSession() {
	c.gen++
	c.index = 0
	c.score.Reset()
	c.current = nil
	c.pending = false
	c.log = c.baseLog.With("session", uuid.NewString())
}

func (c *Controller) load() tea.Cmd {
	c.phase = PhaseLoading
	c.view.ShowBusyIndicator(true)
	gen, src, ctx := c.gen, c.source, c.ctx
	return func() tea.Msg {
		if err := src.LoadData(ctx); err != nil {
			return loadFailedMsg{gen: gen, err: err}
		}
		return dataLoadedMsg{gen: gen}
	}
}

func (c *Controller) requestQuestion() tea.Cmd {
	c.phase = PhaseAwaitingQuestion
	c.pending = true
	gen, src, ctx := c.gen, c.source, c.ctx
	return func() tea.Msg {
		question, err := src.NextQuestion(ctx)
		return questionReadyMsg{gen: gen, question: question, err: err}
	}
}

func (c *Controller) handleDataLoaded(msg dataLoadedMsg) tea.Cmd {
	if c.stale(msg.gen, "data loaded") || !c.expect(PhaseLoading, "data loaded") {
		return nil
	}
	c.loaded = true
	c.view.ShowBusyIndicator(false)
	return c.requestQuestion()
}

func (c *Controller) handleLoadFailed(msg loadFailedMsg) tea.Cmd {
	if c.stale(msg.gen, "load failure") || !c.expect(PhaseLoading, "load failure") {
		return nil
	}
	return c.fail(msg.err)
}

func (c *Controller) handleQuestionReady(msg questionReadyMsg) tea.Cmd {
	if c.stale(msg.gen, "question") {
		return nil
	}
	if !c.pending || !c.expect(PhaseAwaitingQuestion, "question") {
		c.log.Debug("dropping delivery", "kind", "question", "error", ErrProtocol, "reason", "no outstanding request")
		return nil
	}
	c.pending = false
	if msg.err != nil {
		return c.fail(msg.err)
	}
	if msg.question.Empty() {
		c.log.Warn("dropping delivery", "kind", "question", "error", ErrProtocol, "reason", "empty question")
		return nil
	}
	c.current = msg.question
	c.phase = PhaseAwaitingAnswer
	c.view.RenderStep(c.step(msg.question))
	return nil
}

func (c *Controller) handleRevealDone(msg revealDoneMsg) tea.Cmd {
	if c.stale(msg.gen, "reveal") || !c.expect(PhaseRevealing, "reveal") || msg.index != c.index {
		return nil
	}
	c.view.ClearCorrectnessCue()
	if c.index < c.total-1 {
		c.index++
		cmd := c.requestQuestion()
		c.setInput(true)
		return cmd
	}
	return c.record()
}

// record persists the finished session off the update loop. The summary is
// shown once the result arrives.
func (c *Controller) record() tea.Cmd {
	c.phase = PhaseSummarizing
	c.pending = true
	gen, recorder, ctx, timeout := c.gen, c.stats, c.ctx, c.persist
	correct, total, now := c.score.CurrentScore(), c.total, c.now()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		agg, err := recorder.RecordSession(ctx, correct, total, now)
		return sessionRecordedMsg{gen: gen, correct: correct, agg: agg, err: err}
	}
}

func (c *Controller) handleSessionRecorded(msg sessionRecordedMsg) tea.Cmd {
	// The game is stored even if the player already moved on.
	if msg.err == nil && msg.agg.GamesCount > c.last.GamesCount {
		c.last = msg.agg
	}
	if c.stale(msg.gen, "session recorded") {
		return nil
	}
	if !c.pending || !c.expect(PhaseSummarizing, "session recorded") {
		c.log.Debug("dropping delivery", "kind", "session recorded", "error", ErrProtocol, "reason", "no outstanding request")
		return nil
	}
	c.pending = false

	var message string
	if msg.err != nil {
		c.log.Error("failed to record session", "error", msg.err, "correct", msg.correct, "total", c.total)
		message = stats.FormatSummary(msg.correct, c.total, c.last) + "\n" + staleNotice
	} else {
		c.log.Info("session finished", "correct", msg.correct, "total", c.total, "games", msg.agg.GamesCount)
		message = stats.FormatSummary(msg.correct, c.total, msg.agg)
	}
	c.view.ShowDialog(Alert{
		Title:      summaryTitle,
		Message:    message,
		ButtonText: summaryButton,
		OnConfirm:  c.playAgain,
	})
	c.setInput(true)
	return nil
}

func (c *Controller) playAgain() tea.Cmd {
	if c.phase != PhaseSummarizing || c.pending {
		return nil
	}
	c.beginSession()
	if !c.loaded {
		return c.load()
	}
	return c.requestQuestion()
}

func (c *Controller) fail(err error) tea.Cmd {
	c.log.Warn("question source failed", "error", fmt.Errorf("%w: %w", ErrLoad, err), "index", c.index)
	c.phase = PhaseError
	c.loaded = false
	c.pending = false
	c.view.ShowBusyIndicator(false)
	c.view.ShowDialog(Alert{
		Title:      errorTitle,
		Message:    err.Error(),
		ButtonText: errorButton,
		OnConfirm:  c.retry,
	})
	return nil
}

func (c *Controller) retry() tea.Cmd {
	if c.phase != PhaseError {
		return nil
	}
	c.beginSession()
	return c.load()
}

func (c *Controller) step(q *model.Question) model.QuizStep {
	return model.QuizStep{
		Image:    q.Image,
		Question: q.Text,
		Position: fmt.Sprintf("%d/%d", c.index+1, c.total),
	}
}

func (c *Controller) setInput(enabled bool) {
	c.inputEnabled = enabled
	c.view.SetInputEnabled(enabled)
}

func (c *Controller) stale(gen uint64, kind string) bool {
	if gen == c.gen {
		return false
	}
	c.log.Debug("dropping delivery", "kind", kind, "error", ErrProtocol, "reason", "stale session")
	return true
}

func (c *Controller) expect(phase Phase, kind string) bool {
	if c.phase == phase {
		return true
	}
	c.log.Debug("dropping delivery", "kind", kind, "error", ErrProtocol, "phase", c.phase.String())
	return false
}
