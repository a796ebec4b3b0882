package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    uint
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseID(tt.arg, "task")
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseID(%q): unexpected error %v", tt.arg, err)
		}
		if got != tt.want {
			t.Fatalf("parseID(%q): expected %d, got %d", tt.arg, tt.want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}
	if got := truncate("a rather long task name", 10); got != "a rathe..." {
		t.Fatalf("expected truncated name, got %q", got)
	}
	if got := truncate("ŝŝŝŝŝŝŝŝŝŝŝŝ", 6); got != "ŝŝŝ..." {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}

func TestBuildTimesheet(t *testing.T) {
	start := calendar.Date{Year: 2026, Month: time.October, Day: 12}
	work := models.Project{ID: 1, Name: "Work"}
	home := models.Project{ID: 2, Name: "Home"}

	session := func(project models.Project, day, hour int, length time.Duration) models.Session {
		begin := time.Date(2026, time.October, day, hour, 0, 0, 0, time.UTC)
		end := begin.Add(length)
		return models.Session{
			StartTime: &begin,
			EndTime:   &end,
			Task:      models.Task{Project: project},
		}
	}

	sessions := []models.Session{
		session(work, 12, 9, time.Hour),
		session(home, 12, 20, 30*time.Minute),
		session(work, 12, 14, 30*time.Minute),
		session(work, 18, 9, 2*time.Hour),
		session(work, 19, 9, time.Hour), // outside the week
	}

	rows := buildTimesheet(sessions, start, time.UTC)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Project.Name != "Work" || rows[1].Project.Name != "Home" {
		t.Fatalf("expected rows in order of first appearance, got %s, %s", rows[0].Project.Name, rows[1].Project.Name)
	}
	if rows[0].Days[0] != 5400 || rows[0].Days[6] != 7200 {
		t.Fatalf("unexpected work days: %v", rows[0].Days)
	}
	if rows[0].Total != 12600 {
		t.Fatalf("expected work total 12600, got %d", rows[0].Total)
	}
	if rows[1].Days[0] != 1800 || rows[1].Total != 1800 {
		t.Fatalf("unexpected home row: %+v", rows[1])
	}
}

func TestBuildTimesheetUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	start := calendar.Date{Year: 2026, Month: time.October, Day: 12}

	// 20:00 UTC on the 12th is the 13th in Tokyo.
	begin := time.Date(2026, time.October, 12, 20, 0, 0, 0, time.UTC)
	end := begin.Add(time.Hour)
	sessions := []models.Session{{
		StartTime: &begin,
		EndTime:   &end,
		Task:      models.Task{Project: models.Project{ID: 1, Name: "Work"}},
	}}

	rows := buildTimesheet(sessions, start, tokyo)
	if rows[0].Days[0] != 0 || rows[0].Days[1] != 3600 {
		t.Fatalf("expected the hour on the second day, got %v", rows[0].Days)
	}
}

func TestDurationText(t *testing.T) {
	fixed := time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	begin := fixed.Add(-90 * time.Minute)
	end := begin.Add(25 * time.Minute)

	if got := durationText(models.Session{StartTime: &begin, EndTime: &end}); got != "25m" {
		t.Fatalf("expected 25m, got %q", got)
	}
	if got := durationText(models.Session{StartTime: &begin}); got != "1h 30m so far" {
		t.Fatalf("expected running time, got %q", got)
	}
	if got := cellText(0); got != "-" {
		t.Fatalf("expected empty cell, got %q", got)
	}
}

// capture runs tick with args and returns what it printed.
func capture(t *testing.T, args ...string) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	var out bytes.Buffer
	copied := make(chan struct{})
	go func() {
		io.Copy(&out, r)
		close(copied)
	}()

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()
	w.Close()
	<-copied
	r.Close()

	if execErr != nil {
		t.Fatalf("tick %v: %v", args, execErr)
	}
	return out.String()
}

// run runs tick with args and fails the test if the command reported an error.
func run(t *testing.T, args ...string) string {
	t.Helper()
	out := capture(t, args...)
	if strings.Contains(out, "Error:") {
		t.Fatalf("tick %v failed:\n%s", args, out)
	}
	return out
}

func TestCommandsEndToEnd(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tick.db")
	t.Setenv("TICK_CONFIG", "")
	t.Setenv("TICK_ENV", "local")
	t.Setenv("TICK_LOG_LEVEL", "error")
	t.Setenv("TICK_DEFAULT_TIMEZONE", "UTC")
	t.Setenv("TICK_DB_DRIVER", "sqlite")
	t.Setenv("TICK_DB_DSN", dsn)
	t.Setenv("TICK_USER", "cli@example.com")
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	run(t, "project", "add", "Side", "Project", "--color", "#FF8800")
	if out := run(t, "task", "add", "Write report @side-project"); !strings.Contains(out, "Task created") {
		t.Fatalf("expected the task created, got:\n%s", out)
	}
	run(t, "task", "add", "Old chore @side-project +done")

	if out := capture(t, "task", "add", "Lost @nowhere"); !strings.Contains(out, "Error:") {
		t.Fatalf("expected an unknown project reported, got:\n%s", out)
	}
	if out := capture(t, "review", "999", "--minutes", "30"); !strings.Contains(out, "Error:") {
		t.Fatalf("expected a missing session reported, got:\n%s", out)
	}

	store, err := db.Open(db.Config{Driver: db.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	ctx := context.Background()
	user, err := store.FindOrCreateUser(ctx, "cli@example.com", "UTC")
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}

	projects, err := store.ListProjects(ctx, *user, true)
	if err != nil || len(projects) != 1 {
		t.Fatalf("expected one project, got %v (%v)", projects, err)
	}
	if projects[0].Name != "Side Project" || projects[0].Color != "#FF8800" {
		t.Fatalf("unexpected project %+v", projects[0])
	}

	pending, err := store.TasksByUserAndIsActive(ctx, *user, false)
	if err != nil || len(pending) != 1 || pending[0].Name != "Write report" {
		t.Fatalf("expected the pending task, got %v (%v)", pending, err)
	}
	done, err := store.TasksByUserAndIsActive(ctx, *user, true)
	if err != nil || len(done) != 1 || done[0].DoneAt == nil {
		t.Fatalf("expected one stamped done task, got %v (%v)", done, err)
	}
	store.Close()

	taskID := strconv.FormatUint(uint64(pending[0].ID), 10)
	run(t, "start", taskID, "--no-ui")
	run(t, "status")
	if out := run(t, "stop"); !strings.Contains(out, "Stopped tracking time") {
		t.Fatalf("expected the session stopped, got:\n%s", out)
	}
	if out := run(t, "review", "1", "--minutes", "30"); !strings.Contains(out, "30m") {
		t.Fatalf("expected a 30 minute session, got:\n%s", out)
	}
	if out := capture(t, "review", "1", "--minutes", "20000"); !strings.Contains(out, "Error:") {
		t.Fatalf("expected an overlong review rejected, got:\n%s", out)
	}
	run(t, "task", "done", taskID)
	run(t, "dashboard")
	run(t, "daily", "today")
	run(t, "weekly")

	store, err = db.Open(db.Config{Driver: db.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()

	active, err := store.GetActiveSession(ctx, *user)
	if err != nil || active != nil {
		t.Fatalf("expected no running session, got %v (%v)", active, err)
	}
	sessions, err := store.SessionsByTask(ctx, *user, pending[0].ID)
	if err != nil || len(sessions) != 1 || sessions[0].EndTime == nil {
		t.Fatalf("expected one completed session, got %v (%v)", sessions, err)
	}
	if got := sessions[0].DurationSeconds(); got != 30*60 {
		t.Fatalf("expected the reviewed 30 minutes, got %ds", got)
	}
	task, err := store.GetTask(ctx, *user, pending[0].ID)
	if err != nil || !task.IsDone {
		t.Fatalf("expected task done, got %+v (%v)", task, err)
	}
}
