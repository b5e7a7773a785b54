// Package tui provides the Bubble Tea trivia interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuiz/internal/game"
	"github.com/verte-zerg/tuiz/internal/logging"
	"github.com/verte-zerg/tuiz/internal/model"
	"github.com/verte-zerg/tuiz/internal/sound"
	"github.com/verte-zerg/tuiz/internal/stats"
	"github.com/verte-zerg/tuiz/internal/statsui"
)

const (
	rowDifficulty = iota
	rowCategory
	rowStart
	rowStatistics
	rowQuit
	menuRows
)

type tickMsg struct {
	seq int
}

// Model implements the Bubble Tea trivia UI.
type Model struct {
	ctx     context.Context
	game    *game.Game
	bell    *sound.Bell
	history stats.HistorySource
	log     zerolog.Logger

	width  int
	height int

	input     textinput.Model
	menuRow   int
	statsView *statsui.Model
	lastInput string
	notice    string
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	timerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	criticalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs the trivia UI over g. bell and history may be nil.
func NewModel(ctx context.Context, g *game.Game, bell *sound.Bell, history stats.HistorySource) *Model {
	input := textinput.New()
	input.Placeholder = "type your answer"
	input.Prompt = "> "
	input.CharLimit = 120
	return &Model{
		ctx:     ctx,
		game:    g,
		bell:    bell,
		history: history,
		log:     logging.FromContext(ctx).With().Str("component", "tui").Logger(),
		input:   input,
		menuRow: rowStart,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, m.contentWidth()-4)
		if m.statsView != nil {
			m.statsView.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tickMsg:
		if m.game.Tick(m.ctx, msg.seq) && m.game.Phase() == model.PhasePlaying {
			return m, tick(msg.seq)
		}
		if m.game.Phase() == model.PhaseGameOver {
			m.input.Blur()
		}
		return m, nil
	case statsui.CloseMsg:
		return m, m.leaveStatistics()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.game.Phase() {
		case model.PhaseMenu:
			return m.updateMenu(msg)
		case model.PhasePlaying:
			return m.updatePlaying(msg)
		case model.PhaseGameOver:
			return m.updateGameOver(msg)
		case model.PhaseStatistics:
			if m.statsView == nil {
				return m, m.leaveStatistics()
			}
			_, cmd := m.statsView.Update(msg)
			return m, cmd
		}
	}
	if m.game.Phase() == model.PhasePlaying {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.game.Phase() {
	case model.PhaseStatistics:
		if m.statsView != nil {
			return m.statsView.View()
		}
		return ""
	case model.PhasePlaying:
		content = m.renderPlaying()
	case model.PhaseGameOver:
		content = m.renderGameOver()
	default:
		content = m.renderMenu()
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	content = lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "m":
		m.toggleMute()
	case "up", "k":
		m.menuRow = (m.menuRow + menuRows - 1) % menuRows
		m.game.Hover()
	case "down", "j", "tab":
		m.menuRow = (m.menuRow + 1) % menuRows
		m.game.Hover()
	case "left", "h":
		m.cycleSetting(-1)
	case "right", "l":
		m.cycleSetting(1)
	case "s":
		return m, m.startGame()
	case "t":
		m.openStatistics()
	case "enter", " ":
		switch m.menuRow {
		case rowDifficulty, rowCategory:
			m.cycleSetting(1)
		case rowStart:
			return m, m.startGame()
		case rowStatistics:
			m.openStatistics()
		case rowQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	text := m.input.Value()
	correct, err := m.game.SubmitAnswer(m.ctx, text)
	if errors.Is(err, game.ErrEmptyAnswer) {
		m.notice = "Type an answer first."
		return m, nil
	}
	if err != nil {
		m.log.Debug().Err(err).Msg("submit ignored")
		return m, nil
	}
	m.notice = ""
	m.lastInput = text
	m.input.Reset()
	if correct {
		return m, tick(m.game.Seq())
	}
	m.input.Blur()
	return m, nil
}

func (m *Model) updateGameOver(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "m":
		m.toggleMute()
	case "enter", "r", " ":
		if err := m.game.ReturnToMenu(); err != nil {
			m.log.Debug().Err(err).Msg("return to menu ignored")
		}
		m.menuRow = rowStart
	}
	return m, nil
}

func (m *Model) startGame() tea.Cmd {
	if err := m.game.StartGame(); err != nil {
		m.log.Debug().Err(err).Msg("start ignored")
		return nil
	}
	m.notice = ""
	m.lastInput = ""
	m.input.Reset()
	return tea.Batch(m.input.Focus(), tick(m.game.Seq()))
}

func (m *Model) openStatistics() {
	if err := m.game.ViewStatistics(m.ctx); err != nil {
		m.log.Debug().Err(err).Msg("statistics ignored")
		return
	}
	g := m.game
	profiles := statsui.ProfileFunc(func(context.Context) (model.Profile, error) {
		return g.Profile(), nil
	})
	m.statsView = statsui.NewModel(profiles, m.history, model.StatsConfig{}).Embed()
	if m.width > 0 && m.height > 0 {
		m.statsView.SetSize(m.width, m.height)
	}
}

func (m *Model) leaveStatistics() tea.Cmd {
	m.statsView = nil
	if err := m.game.ReturnToMenu(); err != nil {
		m.log.Debug().Err(err).Msg("return to menu ignored")
		return nil
	}
	m.menuRow = rowStart
	return tea.ClearScreen
}

func (m *Model) cycleSetting(delta int) {
	var update game.SettingsUpdate
	settings := m.game.Settings()
	switch m.menuRow {
	case rowDifficulty:
		next := cycle(difficultyOptions(), settings.Difficulty, delta)
		update.Difficulty = &next
	case rowCategory:
		next := cycle(append([]string{model.All}, m.game.Categories()...), settings.Category, delta)
		update.Category = &next
	default:
		return
	}
	if err := m.game.UpdateSettings(update); err != nil {
		m.log.Debug().Err(err).Msg("settings ignored")
		return
	}
	m.game.Hover()
}

func (m *Model) toggleMute() {
	if m.bell == nil {
		return
	}
	m.bell.ToggleMute()
}

func (m *Model) renderMenu() string {
	settings := m.game.Settings()
	lines := []string{
		titleStyle.Render("tuiz · timed trivia"),
		"",
		fmt.Sprintf("High score %d   Daily streak %d", m.game.HighScore(), m.game.CurrentStreak()),
	}
	if m.game.TodayPlayed() {
		lines = append(lines, successStyle.Render("Daily challenge complete! Come back tomorrow to extend your streak."))
	} else {
		lines = append(lines, accentStyle.Render("Play a game today to keep your streak going."))
	}
	lines = append(lines, "")
	rows := []string{
		fmt.Sprintf("Difficulty  ‹ %s ›", settings.Difficulty),
		fmt.Sprintf("Category    ‹ %s ›", settings.Category),
		"Start game",
		"Statistics",
		"Quit",
	}
	for i, row := range rows {
		if i == m.menuRow {
			lines = append(lines, accentStyle.Render("› "+row))
			continue
		}
		lines = append(lines, pendingStyle.Render("  "+row))
	}
	lines = append(lines, "", footerStyle.Render("↑/↓ move  ←/→ change  enter select  s start  t stats  m sound  q quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderPlaying() string {
	q, ok := m.game.Question()
	if !ok {
		return ""
	}
	width := m.contentWidth()
	lines := []string{
		fmt.Sprintf("Score %d   %s · %s", m.game.Score(), q.Category, q.Difficulty),
		m.renderTimer(width),
		"",
		wrapStyledRunes(styleText(q.Text, questionStyle), width),
		"",
		m.input.View(),
	}
	if line := m.renderFeedback(); line != "" {
		lines = append(lines, "", line)
	}
	if m.notice != "" {
		lines = append(lines, accentStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTimer(width int) string {
	c := m.game.Countdown()
	label := fmt.Sprintf(" %2ds", c.Remaining())
	barWidth := minInt(40, width) - len(label)
	if barWidth < 1 || c.Limit() <= 0 {
		return label
	}
	filled := c.Remaining() * barWidth / c.Limit()
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	style := timerStyle
	if c.Critical() {
		style = criticalStyle
	}
	return style.Render(bar + label)
}

func (m *Model) renderFeedback() string {
	fb := m.game.Feedback()
	if !fb.Shown {
		return ""
	}
	if fb.Correct {
		return successStyle.Render("Correct!")
	}
	return incorrectStyle.Render("Incorrect. The answer was: " + fb.Expected)
}

func (m *Model) renderGameOver() string {
	res := m.game.Result()
	lines := []string{
		titleStyle.Render("Game over"),
		"",
		fmt.Sprintf("Final score %d", res.Score),
		accentStyle.Render(encouragement(res.Score)),
	}
	if res.NewHighScore {
		lines = append(lines, successStyle.Render("New High Score!"))
	}
	lines = append(lines, "")
	if res.TimedOut {
		lines = append(lines, incorrectStyle.Render("Time's up!"))
	}
	if len(res.Question.Answers) > 0 {
		lines = append(lines, pendingStyle.Render(res.Question.Text))
		expected := res.Question.Answers[0]
		if !res.TimedOut && m.lastInput != "" {
			lines = append(lines,
				"You answered: "+incorrectStyle.Render(m.lastInput),
				"Correct:      "+renderStyledRunes(diffRunes([]rune(expected), []rune(strings.TrimSpace(m.lastInput)))),
			)
		} else {
			lines = append(lines, "The answer was: "+correctStyle.Render(expected))
		}
	}
	if m.game.TodayPlayed() {
		lines = append(lines, "", successStyle.Render(fmt.Sprintf("Daily Challenge Complete! Streak %d", m.game.CurrentStreak())))
	}
	lines = append(lines, "", footerStyle.Render("enter play again  m sound  q quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Score %d", m.game.Score()),
		fmt.Sprintf("High %d", m.game.HighScore()),
		fmt.Sprintf("Streak %d", m.game.CurrentStreak()),
	}
	if m.bell != nil {
		if m.bell.Muted() {
			segments = append(segments, "Sound off")
		} else {
			segments = append(segments, "Sound on")
		}
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	return maxInt(1, int(float64(m.width)*0.70))
}

func tick(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

func encouragement(score int) string {
	switch {
	case score == 0:
		return "Don't give up! Every expert was once a beginner."
	case score < 5:
		return "Nice start! Keep practicing to improve."
	case score < 10:
		return "Great job! You're getting the hang of it."
	case score < 15:
		return "Excellent work! You're quite knowledgeable."
	default:
		return "Outstanding! You're a trivia master!"
	}
}

func difficultyOptions() []string {
	out := []string{model.All}
	for _, d := range model.Difficulties {
		out = append(out, string(d))
	}
	return out
}

func cycle(options []string, current string, delta int) string {
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
