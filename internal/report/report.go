// Package report assembles the dashboard, daily, weekly and detail views a
// user sees. Each report carries the user's running session, if any.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
	"github.com/balkashynov/tick/internal/summary"
)

const (
	// RecentLimit caps the task and project lists on the dashboard.
	RecentLimit = 5

	DailyLabelLayout   = "Monday, January 02"
	WeekdayLabelLayout = "Monday"

	// MaxWeeksAgo is the furthest weekly report that stays within
	// calendar.MaxDaysBack.
	MaxWeeksAgo = calendar.MaxDaysBack / 7
)

// Store is the slice of the storage layer reports read from.
type Store interface {
	GetActiveSession(ctx context.Context, user models.User) (*models.Session, error)
	SessionsByUserAndDateRange(ctx context.Context, user models.User, start calendar.Date, extraDays int, order db.Order) ([]models.Session, error)
	SessionsByProject(ctx context.Context, user models.User, projectID uint) ([]models.Session, error)
	SessionsByTask(ctx context.Context, user models.User, taskID uint) ([]models.Session, error)
	GetTask(ctx context.Context, user models.User, id uint) (*models.Task, error)
	GetProject(ctx context.Context, user models.User, id uint) (*models.Project, error)
	TasksByProject(ctx context.Context, user models.User, projectID uint, isDone bool) ([]models.Task, error)
	TasksByUserAndIsActive(ctx context.Context, user models.User, isDone bool) ([]models.Task, error)
	TasksByUserAndDoneDateWithin(ctx context.Context, user models.User, date calendar.Date, extraDays int) ([]models.Task, error)
	RecentProjects(ctx context.Context, user models.User, limit int) ([]models.Project, error)
}

// Service builds reports relative to the current day.
type Service struct {
	store Store
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now as the notion of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard is the landing summary of today's activity.
type Dashboard struct {
	ActiveSession  *models.Session      `json:"active_session"`
	Date           calendar.Date        `json:"date"`
	TotalSeconds   int64                `json:"total_seconds"`
	Spent          summary.HoursMinutes `json:"spent"`
	CompletedTasks int                  `json:"completed_tasks"`
	PendingTasks   []models.Task        `json:"pending_tasks"`
	Projects       []models.Project     `json:"projects"`
}

// Daily summarizes a single day.
type Daily struct {
	ActiveSession  *models.Session          `json:"active_session"`
	Date           calendar.Date            `json:"date"`
	Label          string                   `json:"label"`
	Sessions       []models.Session         `json:"sessions"`
	Projects       []summary.ProjectSummary `json:"projects"`
	TotalSeconds   int64                    `json:"total_seconds"`
	Spent          summary.HoursMinutes     `json:"spent"`
	CompletedTasks int                      `json:"completed_tasks"`
	Previous       int                      `json:"previous"`
	Next           *int                     `json:"next"`
}

// Weekly summarizes a seven day window.
type Weekly struct {
	ActiveSession  *models.Session          `json:"active_session"`
	Start          calendar.Date            `json:"start"`
	End            calendar.Date            `json:"end"`
	Label          string                   `json:"label"`
	Days           []summary.DaySummary     `json:"days"`
	Projects       []summary.ProjectSummary `json:"projects"`
	TotalSeconds   int64                    `json:"total_seconds"`
	Spent          summary.HoursMinutes     `json:"spent"`
	CompletedTasks int                      `json:"completed_tasks"`
	Previous       int                      `json:"previous"`
	Next           *int                     `json:"next"`
}

// TaskDetail lists the sessions recorded on a task.
type TaskDetail struct {
	ActiveSession *models.Session      `json:"active_session"`
	Task          models.Task          `json:"task"`
	Sessions      []models.Session     `json:"sessions"`
	SessionCount  int                  `json:"session_count"`
	TotalSeconds  int64                `json:"total_seconds"`
	Spent         summary.HoursMinutes `json:"spent"`
}

// ProjectDetail lists a project's tasks and its all-time total.
type ProjectDetail struct {
	ActiveSession *models.Session      `json:"active_session"`
	Project       models.Project       `json:"project"`
	PendingTasks  []models.Task        `json:"pending_tasks"`
	DoneTasks     []models.Task        `json:"done_tasks"`
	TotalSeconds  int64                `json:"total_seconds"`
	Spent         summary.HoursMinutes `json:"spent"`
}

func (s *Service) today(user models.User) calendar.Date {
	return calendar.Today(s.now(), user.Location())
}

// Dashboard reports today's tracked time, the tasks completed today and the
// most recently touched pending tasks and projects.
func (s *Service) Dashboard(ctx context.Context, user models.User) (*Dashboard, error) {
	active, err := s.store.GetActiveSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	today := s.today(user)

	sessions, err := s.store.SessionsByUserAndDateRange(ctx, user, today, 0, db.OrderAscending)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	done, err := s.store.TasksByUserAndDoneDateWithin(ctx, user, today, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}
	pending, err := s.store.TasksByUserAndIsActive(ctx, user, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending tasks: %w", err)
	}
	projects, err := s.store.RecentProjects(ctx, user, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}

	if len(pending) > RecentLimit {
		pending = pending[:RecentLimit]
	}
	total := summary.TotalSeconds(sessions)

	return &Dashboard{
		ActiveSession:  active,
		Date:           today,
		TotalSeconds:   total,
		Spent:          summary.Breakdown(total),
		CompletedTasks: len(done),
		PendingTasks:   pending,
		Projects:       projects,
	}, nil
}

// Daily reports the day daysAgo days before today.
func (s *Service) Daily(ctx context.Context, user models.User, daysAgo int) (*Daily, error) {
	if daysAgo < 0 || daysAgo > calendar.MaxDaysBack {
		return nil, fmt.Errorf("%w: days ago must be between 0 and %d", db.ErrInvalidArgs, calendar.MaxDaysBack)
	}
	return s.DailyFor(ctx, user, s.today(user).AddDays(-daysAgo))
}

// DailyFor reports a specific date. Navigation offsets are relative to
// today; a future date has no previous/next pair that makes sense and is
// rejected.
func (s *Service) DailyFor(ctx context.Context, user models.User, date calendar.Date) (*Daily, error) {
	today := s.today(user)
	if date.After(today) {
		return nil, fmt.Errorf("%w: %s is in the future", db.ErrInvalidArgs, date)
	}
	daysAgo := date.DaysUntil(today)
	if daysAgo > calendar.MaxDaysBack {
		return nil, fmt.Errorf("%w: %s is more than %d days ago", db.ErrInvalidArgs, date, calendar.MaxDaysBack)
	}

	active, err := s.store.GetActiveSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	sessions, err := s.store.SessionsByUserAndDateRange(ctx, user, date, 0, db.OrderAscending)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	done, err := s.store.TasksByUserAndDoneDateWithin(ctx, user, date, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}

	total := summary.TotalSeconds(sessions)

	return &Daily{
		ActiveSession:  active,
		Date:           date,
		Label:          date.Format(DailyLabelLayout),
		Sessions:       sessions,
		Projects:       summary.BuildProjectSummary(summary.GroupByProject(sessions), total),
		TotalSeconds:   total,
		Spent:          summary.Breakdown(total),
		CompletedTasks: len(done),
		Previous:       daysAgo + 1,
		Next:           newer(daysAgo),
	}, nil
}

// Weekly reports the seven days ending 7*weeksAgo days before today.
func (s *Service) Weekly(ctx context.Context, user models.User, weeksAgo int) (*Weekly, error) {
	if weeksAgo < 0 || weeksAgo > MaxWeeksAgo {
		return nil, fmt.Errorf("%w: weeks ago must be between 0 and %d", db.ErrInvalidArgs, MaxWeeksAgo)
	}
	end := s.today(user).AddDays(-7 * weeksAgo)
	start := end.AddDays(-6)

	active, err := s.store.GetActiveSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	sessions, err := s.store.SessionsByUserAndDateRange(ctx, user, start, 6, db.OrderAscending)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	done, err := s.store.TasksByUserAndDoneDateWithin(ctx, user, start, 6)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}

	total := summary.TotalSeconds(sessions)
	byDate := summary.GroupByDate(sessions, user.Location())

	return &Weekly{
		ActiveSession:  active,
		Start:          start,
		End:            end,
		Label:          fmt.Sprintf("%s - %s", start.Format("Monday January 02"), end.Format("January 02")),
		Days:           summary.BuildDailySeries(byDate, start, end, WeekdayLabelLayout),
		Projects:       summary.BuildProjectSummary(summary.GroupByProject(sessions), total),
		TotalSeconds:   total,
		Spent:          summary.Breakdown(total),
		CompletedTasks: len(done),
		Previous:       weeksAgo + 1,
		Next:           newer(weeksAgo),
	}, nil
}

// TaskDetail reports a task with its sessions, newest first.
func (s *Service) TaskDetail(ctx context.Context, user models.User, taskID uint) (*TaskDetail, error) {
	task, err := s.store.GetTask(ctx, user, taskID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.GetActiveSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	sessions, err := s.store.SessionsByTask(ctx, user, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	total := summary.TotalSeconds(sessions)
	return &TaskDetail{
		ActiveSession: active,
		Task:          *task,
		Sessions:      sessions,
		SessionCount:  len(sessions),
		TotalSeconds:  total,
		Spent:         summary.Breakdown(total),
	}, nil
}

// ProjectDetail reports a project's pending and done tasks.
func (s *Service) ProjectDetail(ctx context.Context, user models.User, projectID uint) (*ProjectDetail, error) {
	project, err := s.store.GetProject(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.GetActiveSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	pending, err := s.store.TasksByProject(ctx, user, projectID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending tasks: %w", err)
	}
	done, err := s.store.TasksByProject(ctx, user, projectID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get done tasks: %w", err)
	}
	sessions, err := s.store.SessionsByProject(ctx, user, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	total := summary.TotalSeconds(sessions)
	return &ProjectDetail{
		ActiveSession: active,
		Project:       *project,
		PendingTasks:  pending,
		DoneTasks:     done,
		TotalSeconds:  total,
		Spent:         summary.Breakdown(total),
	}, nil
}

// newer is the offset one step closer to today, or nil at today.
func newer(ago int) *int {
	if ago <= 0 {
		return nil
	}
	next := ago - 1
	return &next
}
