// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/moviequiz/internal/logger"
	"github.com/verte-zerg/moviequiz/internal/model"
	"github.com/verte-zerg/moviequiz/internal/quiz"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	// Rows reserved around the poster for the label, question, buttons and footer.
	chromeRows = 11
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	posterStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	correctBorder   = lipgloss.Color("#60C28E")
	incorrectBorder = lipgloss.Color("#F56B6C")
	buttonStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Padding(0, 3).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	disabledButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("#5A5A5A")).
				BorderForeground(lipgloss.Color("#3A3A3A"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	modalTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea quiz UI and renders what the quiz
// Controller presents.
type Model struct {
	ctrl *quiz.Controller
	log  *logger.Logger

	step         model.QuizStep
	hasStep      bool
	poster       image.Image
	inputEnabled bool
	cue          *bool
	busy         bool
	ticking      bool
	dialog       *quiz.Alert

	// Rendered poster cells for the last size. The cue only recolors the
	// border around them.
	posterCells string
	posterCols  int
	posterRows  int

	width  int
	height int

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel constructs the quiz UI and the Controller that drives it.
func NewModel(source quiz.QuestionSource, recorder quiz.StatsRecorder, opts quiz.Options) *Model {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = labelStyle
	m := &Model{
		log:          log,
		inputEnabled: true,
		spinner:      sp,
		help:         help.New(),
		keys:         defaultKeyMap(),
	}
	m.ctrl = quiz.NewController(source, m, recorder, opts)
	return m
}

// Controller exposes the session state machine.
func (m *Model) Controller() *quiz.Controller {
	return m.ctrl
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.keepSpinning(m.ctrl.Start())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			m.ticking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.keepSpinning(m.handleKey(msg))
	default:
		return m, m.keepSpinning(m.ctrl.Update(msg))
	}
}

// keepSpinning starts the spinner once the controller turned the busy
// indicator on. The tick chain ends by itself when it is turned off.
func (m *Model) keepSpinning(cmd tea.Cmd) tea.Cmd {
	if !m.busy || m.ticking {
		return cmd
	}
	m.ticking = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.dialog != nil {
		if key.Matches(msg, m.keys.Confirm) {
			alert := *m.dialog
			m.dialog = nil
			if alert.OnConfirm != nil {
				return alert.OnConfirm()
			}
		}
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Reset):
		return m.ctrl.Reset()
	case !m.inputEnabled:
		return nil
	case key.Matches(msg, m.keys.Yes):
		return m.ctrl.SubmitAnswer(true)
	case key.Matches(msg, m.keys.No):
		return m.ctrl.SubmitAnswer(false)
	}
	return nil
}

// RenderStep implements quiz.Presenter.
func (m *Model) RenderStep(step model.QuizStep) {
	m.step = step
	m.hasStep = true
	m.poster = nil
	m.posterCells = ""
	if len(step.Image) == 0 {
		return
	}
	img, err := decodePoster(step.Image)
	if err != nil {
		m.log.Warn("poster not shown", "error", err, "position", step.Position)
		return
	}
	m.poster = img
}

// SetInputEnabled implements quiz.Presenter.
func (m *Model) SetInputEnabled(enabled bool) {
	m.inputEnabled = enabled
}

// ShowCorrectnessCue implements quiz.Presenter.
func (m *Model) ShowCorrectnessCue(correct bool) {
	m.cue = &correct
}

// ClearCorrectnessCue implements quiz.Presenter.
func (m *Model) ClearCorrectnessCue() {
	m.cue = nil
}

// ShowBusyIndicator implements quiz.Presenter.
func (m *Model) ShowBusyIndicator(visible bool) {
	m.busy = visible
}

// ShowDialog implements quiz.Presenter.
func (m *Model) ShowDialog(alert quiz.Alert) {
	m.dialog = &alert
}

// View implements tea.Model.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = fallbackWidth, fallbackHeight
	}
	if m.dialog != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderDialog(width))
	}
	content := m.renderContent(width, height)
	footer := m.renderFooter()
	if height < 3 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(width, height-2, lipgloss.Center, lipgloss.Center, content)
	footerLines := lipgloss.Place(width, 2, lipgloss.Center, lipgloss.Bottom, footer)
	return body + "\n" + footerLines
}

func (m *Model) renderContent(width, height int) string {
	if m.busy && !m.hasStep {
		return m.spinner.View() + " Loading questions..."
	}
	if !m.hasStep {
		return ""
	}
	contentWidth := max(int(float64(width)*0.70), 1)
	parts := []string{labelStyle.Render("Question " + m.step.Position)}

	if poster := m.renderPoster(contentWidth, height); poster != "" {
		parts = append(parts, poster)
	}

	lines := wrapText(m.step.Question, contentWidth)
	parts = append(parts, questionStyle.Render(strings.Join(lines, "\n")))
	parts = append(parts, m.renderButtons())
	if m.busy {
		parts = append(parts, m.spinner.View())
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) renderPoster(width, height int) string {
	style := posterStyle
	if m.cue != nil {
		if *m.cue {
			style = style.BorderForeground(correctBorder)
		} else {
			style = style.BorderForeground(incorrectBorder)
		}
	}
	rows := height - chromeRows
	if m.poster == nil || rows < 2 {
		if m.cue == nil {
			return ""
		}
		// Without a poster the cue still needs something to color.
		return style.Render(strings.Repeat(" ", max(min(width-2, 20), 1)))
	}
	cols := width - 2
	if m.posterCells == "" || m.posterCols != cols || m.posterRows != rows {
		m.posterCells = renderPoster(m.poster, cols, rows)
		m.posterCols, m.posterRows = cols, rows
	}
	return style.Render(m.posterCells)
}

func (m *Model) renderButtons() string {
	style := buttonStyle
	if !m.inputEnabled {
		style = disabledButtonStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, style.Render("No"), "  ", style.Render("Yes"))
}

func (m *Model) renderDialog(width int) string {
	modalWidth := max(30, min(width-4, 60))
	body := []string{modalTitleStyle.Render(m.dialog.Title), ""}
	for _, line := range strings.Split(m.dialog.Message, "\n") {
		body = append(body, wrapText(line, modalWidth-6)...)
	}
	body = append(body, "", buttonStyle.Render(m.dialog.ButtonText))
	return modalStyle.Width(modalWidth).Render(lipgloss.JoinVertical(lipgloss.Center, body...))
}

func (m *Model) renderFooter() string {
	agg := m.ctrl.Statistics()
	segments := []string{fmt.Sprintf("Games %d", agg.GamesCount)}
	if agg.BestGame != nil {
		segments = append(segments, fmt.Sprintf("Record %d/%d", agg.BestGame.Correct, agg.BestGame.Total))
	}
	if agg.GamesCount > 0 {
		segments = append(segments, fmt.Sprintf("Accuracy %.2f%%", agg.TotalAccuracy))
	}
	stats := footerStyle.Render(strings.Join(segments, " · "))
	return stats + "\n" + m.help.View(m.keys)
}
