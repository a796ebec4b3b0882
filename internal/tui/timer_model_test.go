package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/tick/internal/models"
)

func runningSession(start time.Time) models.Session {
	return models.Session{
		ID:        7,
		TaskID:    3,
		StartTime: &start,
		Task: models.Task{
			ID:   3,
			Name: "Write report",
			Project: models.Project{
				Name:  "Work",
				Color: models.DefaultProjectColor,
			},
		},
	}
}

func TestClockText(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{25 * time.Minute, "25:00"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
	}
	for _, tt := range tests {
		if got := clockText(tt.d); got != tt.want {
			t.Errorf("clockText(%s): expected %q, got %q", tt.d, tt.want, got)
		}
	}
}

func TestTimerTickTracksClock(t *testing.T) {
	start := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	current := start.Add(90 * time.Second)
	m := NewTimerModel(runningSession(start), func() time.Time { return current })

	if m.elapsedTime != 90*time.Second {
		t.Fatalf("expected 90s elapsed, got %s", m.elapsedTime)
	}

	current = current.Add(10 * time.Second)
	updated, cmd := m.Update(timerTickMsg{})
	if cmd == nil {
		t.Fatalf("expected the timer to keep ticking")
	}
	if got := updated.(TimerModel).elapsedTime; got != 100*time.Second {
		t.Fatalf("expected 100s elapsed, got %s", got)
	}
}

func TestTimerKeys(t *testing.T) {
	start := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return start }

	tests := []struct {
		name     string
		msg      tea.KeyMsg
		stopping bool
		exiting  bool
	}{
		{"stop", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}, true, false},
		{"leave with q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, false, true},
		{"leave with esc", tea.KeyMsg{Type: tea.KeyEsc}, false, true},
		{"force quit", tea.KeyMsg{Type: tea.KeyCtrlC}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, cmd := NewTimerModel(runningSession(start), clock).Update(tt.msg)
			m := updated.(TimerModel)
			if m.Stopping() != tt.stopping || m.Exiting() != tt.exiting {
				t.Fatalf("expected stopping=%v exiting=%v, got %v %v", tt.stopping, tt.exiting, m.Stopping(), m.Exiting())
			}
			if cmd == nil {
				t.Fatalf("expected a quit command")
			}

			// Once done, ticks stop rescheduling.
			if _, cmd := m.Update(timerTickMsg{}); cmd != nil {
				t.Fatalf("expected ticking to stop")
			}
		})
	}

	m := NewTimerModel(runningSession(start), clock)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Fatalf("expected unbound keys to be ignored")
	}
}

func TestTimerView(t *testing.T) {
	start := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	m := NewTimerModel(runningSession(start), func() time.Time { return start.Add(time.Minute) })

	if m.View() != "Loading..." {
		t.Fatalf("expected a loading view before the first resize")
	}

	for _, width := range []int{60, 120} {
		updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: 40})
		view := updated.(TimerModel).View()
		for _, want := range []string{"TRACKING TIME", "#3", "Write report", "stop & save"} {
			if !strings.Contains(view, want) {
				t.Fatalf("width %d: expected view to contain %q", width, want)
			}
		}
	}
}
