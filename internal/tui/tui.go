package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/tick/internal/models"
	"github.com/balkashynov/tick/internal/summary"
)

// StopFunc ends the user's running session.
type StopFunc func() (*models.Session, error)

// RunTimerTUI shows the running session until the user leaves. Pressing s
// ends the session through stop; leaving any other way keeps it running.
func RunTimerTUI(session models.Session, stop StopFunc) error {
	model := NewTimerModel(session, time.Now)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	timerModel, ok := finalModel.(TimerModel)
	if !ok {
		return nil
	}

	switch {
	case timerModel.Stopping():
		stopped, err := stop()
		if err != nil {
			return fmt.Errorf("failed to stop session: %w", err)
		}
		if stopped == nil {
			fmt.Println("No active time tracking session")
			return nil
		}
		fmt.Printf("⏹️  Stopped tracking time for task #%d: %s\n", stopped.TaskID, stopped.Task.Name)
		fmt.Printf("📊 Session duration: %s\n", summary.Breakdown(stopped.DurationSeconds()))
	case timerModel.Exiting():
		fmt.Printf("\n💡 Timer is still running in the background for task #%d: %s\n", session.TaskID, session.Task.Name)
		fmt.Printf("   Use 'tick status' to check current timer or 'tick stop' to stop it.\n")
	}

	return nil
}

// RunForm runs form until it is saved or abandoned and prints the outcome.
func RunForm(form FormModel) error {
	p := tea.NewProgram(form, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(FormModel)
	if !ok {
		return nil
	}

	switch {
	case m.Completed():
		fmt.Println(m.Result())
	case m.Cancelled():
		fmt.Println(m.cancelText)
	}
	return nil
}
