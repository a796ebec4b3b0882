package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/balkashynov/tick/internal/models"
)

// base is a Sunday morning in UTC.
var base = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: base}
	store, err := Open(Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "tick.db"),
	}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store, clock
}

func mustUser(t *testing.T, s *Store, email string) models.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), email, "UTC")
	if err != nil {
		t.Fatalf("failed to prepare user: %v", err)
	}
	return *user
}

func mustProject(t *testing.T, s *Store, user models.User, name string) models.Project {
	t.Helper()

	project, err := s.CreateProject(context.Background(), user, CreateProjectRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to prepare project: %v", err)
	}
	return *project
}

func mustTask(t *testing.T, s *Store, user models.User, project models.Project, name string) models.Task {
	t.Helper()

	task, err := s.CreateTask(context.Background(), user, CreateTaskRequest{ProjectID: project.ID, Name: name})
	if err != nil {
		t.Fatalf("failed to prepare task: %v", err)
	}
	return *task
}

// mustSession records a completed session that started at start.
func mustSession(t *testing.T, s *Store, clock *fakeClock, user models.User, task models.Task, start time.Time, length time.Duration) models.Session {
	t.Helper()

	ctx := context.Background()
	clock.Set(start)
	if _, err := s.CreateNewSession(ctx, user, task.ID); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	clock.Advance(length)
	session, err := s.EndCurrentSession(ctx, user)
	if err != nil || session == nil {
		t.Fatalf("failed to end session: %v", err)
	}
	return *session
}

func countSessions(t *testing.T, s *Store) int64 {
	t.Helper()

	var n int64
	if err := s.db.Model(&models.Session{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count sessions: %v", err)
	}
	return n
}
