package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tick/internal/models"
)

type timerKeyMap struct {
	Stop  key.Binding
	Leave key.Binding
	Quit  key.Binding
}

func (k timerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Leave, k.Quit}
}

func (k timerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var timerKeys = timerKeyMap{
	Stop: key.NewBinding(
		key.WithKeys("s", "S"),
		key.WithHelp("s", "stop & save"),
	),
	Leave: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc/q", "exit (keep running)"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "force quit"),
	),
}

// TimerModel represents the TUI model for a running session
type TimerModel struct {
	width   int
	height  int
	session models.Session
	now     func() time.Time

	// Timer state
	elapsedTime time.Duration

	// Animation state
	timerAnimation int

	keys timerKeyMap
	help help.Model

	// UI state
	stopping bool // True when user pressed S and the session should end
	exiting  bool // True when user left with the session still running
}

// timerTickMsg is sent every second to update the timer
type timerTickMsg struct{}

// animationTickMsg is sent for faster animations
type animationTickMsg struct{}

// NewTimerModel creates a timer for an active session. now is the clock the
// elapsed time is read from.
func NewTimerModel(session models.Session, now func() time.Time) TimerModel {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))

	return TimerModel{
		session:     session,
		now:         now,
		elapsedTime: session.Elapsed(now()),
		keys:        timerKeys,
		help:        h,
	}
}

// Stopping reports whether the user asked to end the session.
func (m TimerModel) Stopping() bool {
	return m.stopping
}

// Exiting reports whether the user left the timer running.
func (m TimerModel) Exiting() bool {
	return m.exiting
}

func timerTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

func animationTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// Init initializes the timer model
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(timerTick(), animationTick())
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsedTime = m.session.Elapsed(m.now())
		if m.done() {
			return m, nil
		}
		return m, timerTick()

	case animationTickMsg:
		m.timerAnimation = (m.timerAnimation + 1) % 4
		if m.done() {
			return m, nil
		}
		return m, animationTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			m.stopping = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Leave), key.Matches(msg, m.keys.Quit):
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m TimerModel) done() bool {
	return m.stopping || m.exiting
}

// View renders the timer TUI
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - lipgloss.Height(helpBar) - 1

	// Narrow view: just timer panel, full width
	if m.width < 90 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderTaskDetailsPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		helpBar,
	)
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(width)
}

// renderTimerPanel renders the left timer panel
func (m TimerModel) renderTimerPanel(width, height int) string {
	var components []string

	animChars := []string{"⏱", "⏲", "⏱", "⏲"}
	animChar := animChars[m.timerAnimation]
	headerText := fmt.Sprintf("%s  TRACKING TIME  %s", animChar, animChar)
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Render(headerText))

	task := m.session.Task
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render(fmt.Sprintf("#%d", task.ID)))

	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Render(truncate(task.Name, width-4)))

	var clock []string
	for _, line := range strings.Split(m.renderBigClock(), "\n") {
		clock = append(clock, centered(width).Render(line))
	}
	components = append(components, strings.Join(clock, "\n"))

	if m.session.StartTime != nil {
		started := fmt.Sprintf("Started at %s", m.session.StartTime.Local().Format("15:04:05"))
		components = append(components, centered(width).
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render(started))
	}

	panelStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return panelStyle.Render(strings.Join(components, "\n\n"))
}

// bigDigits holds 5x5 glyphs for the clock
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// clockText formats d as MM:SS, or HH:MM:SS from the first hour on
func clockText(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// renderBigClock renders ASCII art clock
func (m TimerModel) renderBigClock() string {
	var lines [5]strings.Builder
	for _, char := range clockText(m.elapsedTime) {
		glyph, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range glyph {
			lines[i].WriteString(glyph[i])
			lines[i].WriteString(" ")
		}
	}

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)

	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = clockStyle.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}

// renderTaskDetailsPanel renders the right panel with the task and project
func (m TimerModel) renderTaskDetailsPanel(width, height int) string {
	task := m.session.Task
	var b strings.Builder

	b.WriteString("\n")

	logoLines := []string{
		"████████╗██╗ ██████╗██╗  ██╗",
		"╚══██╔══╝██║██╔════╝██║ ██╔╝",
		"   ██║   ██║██║     █████╔╝ ",
		"   ██║   ██║██║     ██╔═██╗ ",
		"   ██║   ██║╚██████╗██║  ██╗",
		"   ╚═╝   ╚═╝ ╚═════╝╚═╝  ╚═╝",
	}
	b.WriteString(centered(width - 8).
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render(strings.Join(logoLines, "\n")))
	b.WriteString("\n\n")

	b.WriteString(centered(width - 8).
		Foreground(lipgloss.Color(ColorBorder)).
		Render(strings.Repeat("─", max(min(width-12, 40), 0))))
	b.WriteString("\n\n")

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1)
	b.WriteString(titleStyle.Render(task.Name))
	b.WriteString("\n\n")

	statusIcon, statusColor, statusText := "○", ColorSecondaryText, "pending"
	if task.IsDone {
		statusIcon, statusColor, statusText = "✅", ColorSuccess, "done"
	}
	b.WriteString(centered(width - 8).Render(fmt.Sprintf("%s Status: %s", statusIcon,
		lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor)).Bold(true).Render(statusText))))
	b.WriteString("\n")

	projectValue, projectColor := "none", ColorDisabledText
	if task.Project.Name != "" {
		projectValue = task.Project.Name
		projectColor = task.Project.Color
	}
	b.WriteString(centered(width - 8).Render(fmt.Sprintf("📁 Project: %s",
		lipgloss.NewStyle().Foreground(lipgloss.Color(projectColor)).Render(projectValue))))
	b.WriteString("\n")

	if !task.CreatedAt.IsZero() {
		b.WriteString(centered(width - 8).Render(fmt.Sprintf("📝 Created: %s",
			lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(task.CreatedAt.Local().Format("Jan 02, 2006")))))
	}

	return lipgloss.NewStyle().Height(height).Render(b.String())
}

// renderHelpBar renders the key help at the bottom
func (m TimerModel) renderHelpBar() string {
	return centered(m.width).Render(m.help.View(m.keys))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
