package db

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/models"
)

func TestGetActiveSession_NoneIsNil(t *testing.T) {
	store, _ := newTestStore(t)
	user := mustUser(t, store, "a@example.com")

	session, err := store.GetActiveSession(context.Background(), user)
	if err != nil {
		t.Fatalf("GetActiveSession returned error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected no active session, got #%d", session.ID)
	}
}

func TestCreateNewSession_CreatesActiveSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	task := mustTask(t, store, user, mustProject(t, store, user, "Work"), "Write report")

	session, err := store.CreateNewSession(ctx, user, task.ID)
	if err != nil {
		t.Fatalf("CreateNewSession returned error: %v", err)
	}
	if session.StartTime == nil || !session.StartTime.Equal(base) {
		t.Fatalf("expected start %v, got %v", base, session.StartTime)
	}
	if session.EndTime != nil {
		t.Fatalf("expected no end time, got %v", session.EndTime)
	}
	if session.UserID != user.ID || session.TaskID != task.ID {
		t.Fatalf("unexpected ownership: user %d task %d", session.UserID, session.TaskID)
	}

	active, err := store.GetActiveSession(ctx, user)
	if err != nil {
		t.Fatalf("GetActiveSession returned error: %v", err)
	}
	if active == nil || active.ID != session.ID {
		t.Fatalf("expected active session #%d, got %+v", session.ID, active)
	}
	if active.Task.Project.Name != "Work" {
		t.Fatalf("expected task and project to be loaded, got %+v", active.Task)
	}
}

func TestCreateNewSession_ConflictLeavesStateUnchanged(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	project := mustProject(t, store, user, "Work")
	first := mustTask(t, store, user, project, "First")
	second := mustTask(t, store, user, project, "Second")

	running, err := store.CreateNewSession(ctx, user, first.ID)
	if err != nil {
		t.Fatalf("CreateNewSession returned error: %v", err)
	}

	_, err = store.CreateNewSession(ctx, user, second.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	var activeErr *ActiveSessionError
	if !errors.As(err, &activeErr) {
		t.Fatalf("expected *ActiveSessionError, got %T", err)
	}
	if activeErr.Session.ID != running.ID {
		t.Fatalf("expected conflict to point at session #%d, got #%d", running.ID, activeErr.Session.ID)
	}

	if n := countSessions(t, store); n != 1 {
		t.Fatalf("expected 1 session after conflict, got %d", n)
	}
}

func TestCreateNewSession_TaskOfAnotherUser(t *testing.T) {
	store, _ := newTestStore(t)
	owner := mustUser(t, store, "owner@example.com")
	intruder := mustUser(t, store, "intruder@example.com")
	task := mustTask(t, store, owner, mustProject(t, store, owner, "Work"), "Private")

	_, err := store.CreateNewSession(context.Background(), intruder, task.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActiveSessionIsPerUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, store, "alice@example.com")
	bob := mustUser(t, store, "bob@example.com")
	aliceTask := mustTask(t, store, alice, mustProject(t, store, alice, "A"), "a")
	bobTask := mustTask(t, store, bob, mustProject(t, store, bob, "B"), "b")

	if _, err := store.CreateNewSession(ctx, alice, aliceTask.ID); err != nil {
		t.Fatalf("alice start: %v", err)
	}
	if _, err := store.CreateNewSession(ctx, bob, bobTask.ID); err != nil {
		t.Fatalf("bob start should not conflict with alice: %v", err)
	}

	if _, err := store.EndCurrentSession(ctx, alice); err != nil {
		t.Fatalf("alice stop: %v", err)
	}
	active, err := store.GetActiveSession(ctx, bob)
	if err != nil || active == nil {
		t.Fatalf("expected bob's session to keep running, got %v, %v", active, err)
	}
}

func TestEndCurrentSession(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	task := mustTask(t, store, user, mustProject(t, store, user, "Work"), "Write report")

	ended, err := store.EndCurrentSession(ctx, user)
	if err != nil || ended != nil {
		t.Fatalf("expected no-op without an active session, got %v, %v", ended, err)
	}

	if _, err := store.CreateNewSession(ctx, user, task.ID); err != nil {
		t.Fatalf("CreateNewSession returned error: %v", err)
	}
	clock.Advance(30 * time.Second)

	ended, err = store.EndCurrentSession(ctx, user)
	if err != nil {
		t.Fatalf("EndCurrentSession returned error: %v", err)
	}
	if ended.DurationSeconds() != 30 {
		t.Fatalf("expected 30 seconds, got %d", ended.DurationSeconds())
	}

	stored, err := store.GetSession(ctx, user, ended.ID)
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if stored.State() != models.SessionCompleted || stored.DurationSeconds() != 30 {
		t.Fatalf("expected stored completed session of 30s, got %s %ds", stored.State(), stored.DurationSeconds())
	}

	active, err := store.GetActiveSession(ctx, user)
	if err != nil || active != nil {
		t.Fatalf("expected no active session after stop, got %v, %v", active, err)
	}
}

func TestAtMostOneActiveSessionAfterAnySequence(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	project := mustProject(t, store, user, "Work")
	tasks := []models.Task{
		mustTask(t, store, user, project, "one"),
		mustTask(t, store, user, project, "two"),
	}

	ops := "ssesseeses"
	for i, op := range ops {
		clock.Advance(time.Minute)
		switch op {
		case 's':
			_, err := store.CreateNewSession(ctx, user, tasks[i%2].ID)
			if err != nil && !errors.Is(err, ErrConflict) {
				t.Fatalf("step %d: unexpected error %v", i, err)
			}
		case 'e':
			if _, err := store.EndCurrentSession(ctx, user); err != nil {
				t.Fatalf("step %d: unexpected error %v", i, err)
			}
		}

		var open int64
		err := store.db.Model(&models.Session{}).
			Where("user_id = ? AND end_time IS NULL", user.ID).
			Count(&open).Error
		if err != nil {
			t.Fatalf("count open sessions: %v", err)
		}
		if open > 1 {
			t.Fatalf("step %d: found %d active sessions", i, open)
		}
	}
}

func TestCreateNewSession_ConcurrentStartsOnlyOneWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	task := mustTask(t, store, user, mustProject(t, store, user, "Work"), "Race")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateNewSession(ctx, user, task.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful start, got %d", wins)
	}
	if n := countSessions(t, store); n != 1 {
		t.Fatalf("expected 1 stored session, got %d", n)
	}
}

func TestActiveSessionUniqueIndex(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	task := mustTask(t, store, user, mustProject(t, store, user, "Work"), "Index")

	if _, err := store.CreateNewSession(ctx, user, task.ID); err != nil {
		t.Fatalf("CreateNewSession returned error: %v", err)
	}

	start := base
	rogue := models.Session{TaskID: task.ID, UserID: user.ID, StartTime: &start}
	err := store.db.Omit("Task").Create(&rogue).Error
	if !isDuplicate(err) {
		t.Fatalf("expected the database to reject a second active session, got %v", err)
	}
}

func TestEndSession_TouchesTaskAndProject(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	project := mustProject(t, store, user, "Work")
	task := mustTask(t, store, user, project, "Write report")

	session, err := store.CreateNewSession(ctx, user, task.ID)
	if err != nil {
		t.Fatalf("CreateNewSession returned error: %v", err)
	}
	clock.Advance(10 * time.Minute)

	if _, err := store.EndSession(ctx, user, session.ID); err != nil {
		t.Fatalf("EndSession returned error: %v", err)
	}

	want := base.Add(10 * time.Minute)
	gotTask, err := store.GetTask(ctx, user, task.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if !gotTask.LastEdited.Equal(want) {
		t.Fatalf("expected task last_edited %v, got %v", want, gotTask.LastEdited)
	}
	if !gotTask.Project.LastEdited.Equal(want) {
		t.Fatalf("expected project last_edited %v, got %v", want, gotTask.Project.LastEdited)
	}

	clock.Advance(time.Hour)
	again, err := store.EndSession(ctx, user, session.ID)
	if err != nil {
		t.Fatalf("second EndSession returned error: %v", err)
	}
	if !again.EndTime.Equal(want) {
		t.Fatalf("expected completed session to keep end %v, got %v", want, again.EndTime)
	}
}

func TestGetSession_OtherUserIsNotFound(t *testing.T) {
	store, clock := newTestStore(t)
	owner := mustUser(t, store, "owner@example.com")
	other := mustUser(t, store, "other@example.com")
	task := mustTask(t, store, owner, mustProject(t, store, owner, "Work"), "Private")
	session := mustSession(t, store, clock, owner, task, base, time.Minute)

	_, err := store.GetSession(context.Background(), other, session.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewSession(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	task := mustTask(t, store, user, mustProject(t, store, user, "Work"), "Draft")

	running, err := store.CreateNewSession(ctx, user, task.ID)
	if err != nil {
		t.Fatalf("CreateNewSession returned error: %v", err)
	}
	clock.Advance(3 * time.Hour)

	done := true
	reviewed, err := store.ReviewSession(ctx, user, running.ID, ReviewInput{
		TaskName:        "Write report",
		DurationMinutes: 45,
		MarkDone:        &done,
	})
	if err != nil {
		t.Fatalf("ReviewSession returned error: %v", err)
	}
	if reviewed.DurationSeconds() != 45*60 {
		t.Fatalf("expected 2700 seconds, got %d", reviewed.DurationSeconds())
	}

	active, err := store.GetActiveSession(ctx, user)
	if err != nil || active != nil {
		t.Fatalf("expected review to complete the running session, got %v, %v", active, err)
	}

	gotTask, err := store.GetTask(ctx, user, task.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if gotTask.Name != "Write report" || !gotTask.IsDone || gotTask.DoneAt == nil {
		t.Fatalf("unexpected task after review: %+v", gotTask)
	}
	if !gotTask.DoneAt.Equal(base.Add(3 * time.Hour)) {
		t.Fatalf("expected DoneAt at review time, got %v", gotTask.DoneAt)
	}

	// A second review of a completed session overwrites the end again.
	clock.Advance(time.Hour)
	reviewed, err = store.ReviewSession(ctx, user, running.ID, ReviewInput{DurationMinutes: 20})
	if err != nil {
		t.Fatalf("second ReviewSession returned error: %v", err)
	}
	if reviewed.State() != models.SessionCompleted || reviewed.DurationSeconds() != 20*60 {
		t.Fatalf("expected completed 20m session, got %s %ds", reviewed.State(), reviewed.DurationSeconds())
	}
}

func TestReviewSession_RejectsBadDuration(t *testing.T) {
	store, clock := newTestStore(t)
	user := mustUser(t, store, "a@example.com")
	task := mustTask(t, store, user, mustProject(t, store, user, "Work"), "Draft")
	session := mustSession(t, store, clock, user, task, base, time.Minute)
	ctx := context.Background()

	for _, minutes := range []int{0, -5, MaxReviewMinutes + 1, math.MaxInt64 / 1000} {
		_, err := store.ReviewSession(ctx, user, session.ID, ReviewInput{DurationMinutes: minutes})
		if !errors.Is(err, ErrInvalidArgs) {
			t.Fatalf("%d minutes: expected ErrInvalidArgs, got %v", minutes, err)
		}
	}

	unchanged, err := store.GetSession(ctx, user, session.ID)
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if !unchanged.EndTime.Equal(base.Add(time.Minute)) {
		t.Fatalf("expected the end to stay at %s, got %s", base.Add(time.Minute), unchanged.EndTime)
	}

	reviewed, err := store.ReviewSession(ctx, user, session.ID, ReviewInput{DurationMinutes: MaxReviewMinutes})
	if err != nil {
		t.Fatalf("ReviewSession at the limit returned error: %v", err)
	}
	if got := reviewed.DurationSeconds(); got != MaxReviewMinutes*60 {
		t.Fatalf("expected %d seconds, got %d", MaxReviewMinutes*60, got)
	}
	if !reviewed.EndTime.After(*reviewed.StartTime) || reviewed.EndTime.Nanosecond() != 0 {
		t.Fatalf("expected a whole-second end after the start, got %s", reviewed.EndTime)
	}
}

func TestSessionsByUserAndDateRange(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	other := mustUser(t, store, "other@example.com")
	task := mustTask(t, store, user, mustProject(t, store, user, "Work"), "Write report")
	otherTask := mustTask(t, store, other, mustProject(t, store, other, "Elsewhere"), "Not mine")

	yesterday := base.AddDate(0, 0, -1)
	earlyYesterday := mustSession(t, store, clock, user, task, yesterday.Add(-9*time.Hour), time.Minute) // 00:00:00
	lateToday := mustSession(t, store, clock, user, task, base.Add(14*time.Hour+59*time.Minute+59*time.Second), time.Second)
	morning := mustSession(t, store, clock, user, task, base, 25*time.Minute)
	mustSession(t, store, clock, other, otherTask, base, time.Minute)
	mustSession(t, store, clock, user, task, base.AddDate(0, 0, 1).Add(-9*time.Hour), time.Minute) // tomorrow 00:00:00

	today := calendar.DateOf(base)

	sessions, err := store.SessionsByUserAndDateRange(ctx, user, today, 0, OrderAscending)
	if err != nil {
		t.Fatalf("SessionsByUserAndDateRange returned error: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != morning.ID || sessions[1].ID != lateToday.ID {
		t.Fatalf("expected today's sessions [%d %d] ascending, got %v", morning.ID, lateToday.ID, sessionIDs(sessions))
	}
	if sessions[0].Task.Project.Name != "Work" {
		t.Fatalf("expected Task.Project to be loaded, got %+v", sessions[0].Task)
	}

	sessions, err = store.SessionsByUserAndDateRange(ctx, user, today.AddDays(-1), 1, OrderDescending)
	if err != nil {
		t.Fatalf("SessionsByUserAndDateRange returned error: %v", err)
	}
	want := []uint{lateToday.ID, morning.ID, earlyYesterday.ID}
	if got := sessionIDs(sessions); !equalIDs(got, want) {
		t.Fatalf("expected %v descending, got %v", want, got)
	}
}

func TestSessionsByUserAndDateRange_UsesUserTimeZone(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	user, err := store.CreateUser(ctx, "tokyo@example.com", "Asia/Tokyo")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	task := mustTask(t, store, *user, mustProject(t, store, *user, "Work"), "Late shift")

	// 16:00 UTC on the 18th is 01:00 on the 19th in Tokyo.
	session := mustSession(t, store, clock, *user, task, time.Date(2026, time.October, 18, 16, 0, 0, 0, time.UTC), time.Hour)

	sessions, err := store.SessionsByUserAndDateRange(ctx, *user, calendar.Date{Year: 2026, Month: time.October, Day: 19}, 0, OrderAscending)
	if err != nil {
		t.Fatalf("SessionsByUserAndDateRange returned error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != session.ID {
		t.Fatalf("expected session on the 19th in Tokyo, got %v", sessionIDs(sessions))
	}
}

func TestSessionsByProjectAndTask(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	user := mustUser(t, store, "a@example.com")
	work := mustProject(t, store, user, "Work")
	home := mustProject(t, store, user, "Home")
	report := mustTask(t, store, user, work, "Report")
	dishes := mustTask(t, store, user, home, "Dishes")

	first := mustSession(t, store, clock, user, report, base, time.Minute)
	mustSession(t, store, clock, user, dishes, base.Add(time.Hour), time.Minute)
	second := mustSession(t, store, clock, user, report, base.Add(2*time.Hour), time.Minute)

	byProject, err := store.SessionsByProjectAndDateRange(ctx, user, work.ID, calendar.DateOf(base), 0)
	if err != nil {
		t.Fatalf("SessionsByProjectAndDateRange returned error: %v", err)
	}
	if got := sessionIDs(byProject); !equalIDs(got, []uint{first.ID, second.ID}) {
		t.Fatalf("unexpected project sessions %v", got)
	}

	byTask, err := store.SessionsByTask(ctx, user, report.ID)
	if err != nil {
		t.Fatalf("SessionsByTask returned error: %v", err)
	}
	if got := sessionIDs(byTask); !equalIDs(got, []uint{second.ID, first.ID}) {
		t.Fatalf("expected newest first, got %v", got)
	}

	all, err := store.SessionsByProject(ctx, user, home.ID)
	if err != nil {
		t.Fatalf("SessionsByProject returned error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 Home session, got %d", len(all))
	}
}

func sessionIDs(sessions []models.Session) []uint {
	ids := make([]uint, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
