package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
	"github.com/balkashynov/tick/internal/parser"
	"github.com/balkashynov/tick/internal/summary"
)

// TaskStore is what the task form saves through.
type TaskStore interface {
	ListProjects(ctx context.Context, user models.User, active bool) ([]models.Project, error)
	CreateTask(ctx context.Context, user models.User, req db.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, user models.User, id uint, req db.UpdateTaskRequest) (*models.Task, error)
}

// ReviewStore is what the review form saves through.
type ReviewStore interface {
	ReviewSession(ctx context.Context, user models.User, id uint, in db.ReviewInput) (*models.Session, error)
}

// formField is one step of a form
type formField struct {
	label    string
	icon     string
	input    textinput.Model
	required bool
	validate func(string) error
}

// FormModel is a step-by-step form with a live preview. Enter moves through
// the fields to a final Save step; esc with unsaved changes asks whether to
// save them first.
type FormModel struct {
	title      string
	cancelText string
	fields     []formField
	initial    []string
	step       int // len(fields) is the Save step
	width      int
	height     int

	// save writes the values and returns the message shown after exit
	save func(values []string) (string, error)

	// State
	result        string
	err           error
	validationErr string
	completed     bool
	cancelled     bool

	// Save confirmation modal
	showSaveModal   bool
	saveModalChoice bool // true for Yes, false for No
}

func newFormModel(title, cancelText string, fields []formField, save func([]string) (string, error)) FormModel {
	for i := range fields {
		in := &fields[i].input
		in.Width = 60
		in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		in.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}
	fields[0].input.Focus()

	initial := make([]string, len(fields))
	for i, f := range fields {
		initial[i] = strings.TrimSpace(f.input.Value())
	}

	return FormModel{
		title:      title,
		cancelText: cancelText,
		fields:     fields,
		initial:    initial,
		save:       save,
	}
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	return in
}

// NewTaskForm builds the create form, or the edit form when task is not nil.
func NewTaskForm(ctx context.Context, store TaskStore, user models.User, task *models.Task) FormModel {
	var name, project, done string
	title := "📝 Create New Task"
	cancelText := "❌ Task creation cancelled."
	if task != nil {
		name, project, done = task.Name, task.Project.Name, yesNo(task.IsDone)
		title = fmt.Sprintf("📝 Edit Task #%d", task.ID)
		cancelText = "❌ Task edit cancelled."
	}

	fields := []formField{
		{
			label:    "Name",
			icon:     "📋",
			input:    newInput("Enter task name... (required)", name, 280),
			required: true,
		},
		{
			label:    "Project",
			icon:     "📁",
			input:    newInput("Name of an active project (required)", project, 255),
			required: true,
		},
		{
			label:    "Done",
			icon:     "✅",
			input:    newInput("yes/no (Enter to skip - not done)", done, 5),
			validate: validateYesNo,
		},
	}

	save := func(values []string) (string, error) {
		projects, err := store.ListProjects(ctx, user, true)
		if err != nil {
			return "", err
		}
		p, ok := parser.MatchProject(projects, values[1])
		if !ok {
			return "", fmt.Errorf("no active project named %s", values[1])
		}
		isDone, _ := parseYesNo(values[2])

		if task == nil {
			created, err := store.CreateTask(ctx, user, db.CreateTaskRequest{
				ProjectID: p.ID,
				Name:      values[0],
				IsDone:    isDone,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Task created (ID: %d): %s", created.ID, created.Name), nil
		}

		updated, err := store.UpdateTask(ctx, user, task.ID, db.UpdateTaskRequest{
			Name:      &values[0],
			ProjectID: &p.ID,
			IsDone:    &isDone,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✏️  Task updated (ID: %d): %s", updated.ID, updated.Name), nil
	}

	return newFormModel(title, cancelText, fields, save)
}

// NewReviewForm builds the form that corrects session after the fact.
func NewReviewForm(ctx context.Context, store ReviewStore, user models.User, session models.Session) FormModel {
	minutes := ""
	if m := session.DurationSeconds() / 60; m > 0 {
		minutes = strconv.FormatInt(m, 10)
	}

	fields := []formField{
		{
			label:    "Task Name",
			icon:     "📋",
			input:    newInput("Task name (required)", session.Task.Name, 280),
			required: true,
		},
		{
			label:    "Duration",
			icon:     "⏱️",
			input:    newInput(fmt.Sprintf("Minutes, 1 to %d (required)", db.MaxReviewMinutes), minutes, 5),
			required: true,
			validate: validateMinutes,
		},
		{
			label:    "Done",
			icon:     "✅",
			input:    newInput("yes/no (Enter to skip - not done)", yesNo(session.Task.IsDone), 5),
			validate: validateYesNo,
		},
	}

	save := func(values []string) (string, error) {
		duration, _ := strconv.Atoi(values[1])
		isDone, _ := parseYesNo(values[2])

		reviewed, err := store.ReviewSession(ctx, user, session.ID, db.ReviewInput{
			TaskName:        values[0],
			DurationMinutes: duration,
			MarkDone:        &isDone,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("📝 Reviewed session #%d on task #%d: %s (%s)",
			reviewed.ID, reviewed.TaskID, reviewed.Task.Name, summary.Breakdown(reviewed.DurationSeconds())), nil
	}

	title := fmt.Sprintf("📝 Review Session #%d", session.ID)
	return newFormModel(title, "❌ Review cancelled.", fields, save)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "done":
		return true, nil
	case "", "n", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("answer yes or no")
}

func validateYesNo(s string) error {
	_, err := parseYesNo(s)
	return err
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > db.MaxReviewMinutes {
		return fmt.Errorf("duration must be a whole number of minutes between 1 and %d", db.MaxReviewMinutes)
	}
	return nil
}

// Values returns the trimmed field values in order.
func (m FormModel) Values() []string {
	values := make([]string, len(m.fields))
	for i, f := range m.fields {
		values[i] = strings.TrimSpace(f.input.Value())
	}
	return values
}

// Completed reports whether the form was saved.
func (m FormModel) Completed() bool {
	return m.completed
}

// Cancelled reports whether the user left without saving.
func (m FormModel) Cancelled() bool {
	return m.cancelled
}

// Result is the message describing what was saved.
func (m FormModel) Result() string {
	return m.result
}

func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputWidth := (m.width * 2 / 3) - 10
		if inputWidth < 30 {
			inputWidth = 30
		}
		if inputWidth > 80 {
			inputWidth = 80
		}
		for i := range m.fields {
			m.fields[i].input.Width = inputWidth
		}
		return m, nil

	case tea.KeyMsg:
		if m.showSaveModal {
			switch msg.String() {
			case "left", "right":
				m.saveModalChoice = !m.saveModalChoice
				return m, nil
			case "y", "Y":
				m.saveModalChoice = true
				return m.handleSaveChoice()
			case "n", "N":
				m.saveModalChoice = false
				return m.handleSaveChoice()
			case "enter":
				return m.handleSaveChoice()
			case "esc":
				m.showSaveModal = false
				return m, nil
			case "ctrl+c":
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit

		case "esc":
			if m.onSaveStep() {
				return m.prevStep()
			}
			if !m.hasChanges() {
				m.cancelled = true
				return m, tea.Quit
			}
			m.showSaveModal = true
			m.saveModalChoice = true
			return m, nil

		case "enter":
			if m.onSaveStep() {
				return m.submit()
			}
			if !m.validateStep(m.step) {
				return m, nil
			}
			return m.nextStep()

		case "tab", "down":
			if !m.onSaveStep() && !m.validateStep(m.step) {
				return m, nil
			}
			return m.nextStep()

		case "shift+tab", "up":
			return m.prevStep()
		}
	}

	var cmd tea.Cmd
	if !m.onSaveStep() {
		m.fields[m.step].input, cmd = m.fields[m.step].input.Update(msg)
	}
	return m, cmd
}

func (m FormModel) onSaveStep() bool {
	return m.step == len(m.fields)
}

// validateStep checks one field and records the problem, if any
func (m *FormModel) validateStep(step int) bool {
	m.validationErr = ""
	f := m.fields[step]
	value := strings.TrimSpace(f.input.Value())

	if value == "" {
		if f.required {
			m.validationErr = f.label + " is required"
			return false
		}
		return true
	}
	if f.validate != nil {
		if err := f.validate(value); err != nil {
			m.validationErr = err.Error()
			return false
		}
	}
	return true
}

func (m FormModel) nextStep() (FormModel, tea.Cmd) {
	if m.onSaveStep() {
		return m, nil
	}
	m.fields[m.step].input.Blur()
	m.step++
	if !m.onSaveStep() {
		m.fields[m.step].input.Focus()
	}
	return m, textinput.Blink
}

func (m FormModel) prevStep() (FormModel, tea.Cmd) {
	if m.step == 0 {
		return m, nil
	}
	if !m.onSaveStep() {
		m.fields[m.step].input.Blur()
	}
	m.step--
	m.validationErr = ""
	m.fields[m.step].input.Focus()
	return m, textinput.Blink
}

func (m FormModel) hasChanges() bool {
	for i, value := range m.Values() {
		if value != m.initial[i] {
			return true
		}
	}
	return false
}

// submit validates every field, jumping back to the first bad one, then
// saves. A failed save keeps the form open with the error shown.
func (m FormModel) submit() (FormModel, tea.Cmd) {
	for i := range m.fields {
		if !m.validateStep(i) {
			if !m.onSaveStep() {
				m.fields[m.step].input.Blur()
			}
			m.step = i
			m.fields[m.step].input.Focus()
			return m, textinput.Blink
		}
	}

	result, err := m.save(m.Values())
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.completed = true
	m.result = result
	return m, tea.Quit
}

func (m FormModel) handleSaveChoice() (FormModel, tea.Cmd) {
	m.showSaveModal = false
	if m.saveModalChoice {
		return m.submit()
	}
	m.cancelled = true
	return m, tea.Quit
}

// View renders the form
func (m FormModel) View() string {
	if m.cancelled || m.completed {
		return "" // the caller prints the outcome
	}

	if m.width < 85 {
		return m.renderSmallLayout()
	}

	rightWidth := 40
	leftWidth := m.width - rightWidth - 4

	leftStyle := lipgloss.NewStyle().
		Width(leftWidth).
		Height(m.height - 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1)

	rightStyle := lipgloss.NewStyle().
		Width(rightWidth).
		Height(m.height - 2).
		Padding(1)

	mainView := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(m.renderWizard()),
		" ",
		rightStyle.Render(m.renderPreview()),
	)

	if m.showSaveModal {
		return m.renderSaveModal()
	}
	return mainView
}

// renderWizard renders the step list and the current input
func (m FormModel) renderWizard() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))
	currentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	filledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	skippedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
	futureStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	values := m.Values()
	for i, f := range m.fields {
		switch {
		case i == m.step:
			b.WriteString(currentStyle.Render("▶ " + f.label))
		case values[i] != "":
			b.WriteString(filledStyle.Render("✓ " + f.label))
		case i < m.step:
			b.WriteString(skippedStyle.Render("  " + f.label))
		default:
			b.WriteString(futureStyle.Render("  " + f.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.onSaveStep() {
		b.WriteString(currentStyle.Render("▶ 💾 Save"))
	} else {
		b.WriteString(futureStyle.Render("  💾 Save"))
	}
	b.WriteString("\n\n")

	if m.onSaveStep() {
		b.WriteString("Press Enter to save, shift+tab to go back")
	} else {
		f := m.fields[m.step]
		b.WriteString(f.icon + " " + f.label + "\n")
		b.WriteString(f.input.View())
	}

	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	if m.validationErr != "" {
		b.WriteString("\n\n" + errStyle.Render("⚠ "+m.validationErr))
	}
	if m.err != nil {
		b.WriteString("\n\n" + errStyle.Render("❌ "+m.err.Error()))
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true)
	b.WriteString("\n\n" + helpStyle.Render("enter next • tab/shift+tab move • esc save & exit • ctrl+c quit"))

	return b.String()
}

// renderPreview renders the values entered so far
func (m FormModel) renderPreview() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentMain))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	missingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Italic(true)

	b.WriteString(headerStyle.Render("Preview"))
	b.WriteString("\n\n")

	for i, value := range m.Values() {
		b.WriteString(labelStyle.Render(m.fields[i].label + ": "))
		if value == "" {
			b.WriteString(missingStyle.Render("not set"))
		} else {
			b.WriteString(valueStyle.Render(truncate(value, 30)))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Padding(1).
		Render(b.String())
}

func (m FormModel) renderSmallLayout() string {
	if m.showSaveModal {
		return m.renderSaveModal()
	}
	return m.renderWizard() + "\n\n" + m.renderPreview()
}

// renderSaveModal renders the save confirmation prompt
func (m FormModel) renderSaveModal() string {
	var content strings.Builder
	content.WriteString("Save changes?\n\n")

	yesStyle := lipgloss.NewStyle().Padding(0, 2)
	noStyle := lipgloss.NewStyle().Padding(0, 2)
	if m.saveModalChoice {
		yesStyle = yesStyle.
			Background(lipgloss.Color(ColorAccentBright)).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)
	} else {
		noStyle = noStyle.
			Background(lipgloss.Color(ColorError)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)
	}

	content.WriteString(lipgloss.JoinHorizontal(
		lipgloss.Center,
		yesStyle.Render("Yes"),
		"   ",
		noStyle.Render("No"),
	))
	content.WriteString("\n\n")
	content.WriteString("← → or Y/N to choose, Enter to confirm\nEsc to cancel")

	modal := lipgloss.NewStyle().
		Width(50).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentBright)).
		Background(lipgloss.Color(ColorCardBackground)).
		Padding(1).
		Align(lipgloss.Center).
		Render(content.String())

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		modal,
	)
}
