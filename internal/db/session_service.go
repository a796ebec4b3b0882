package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/models"
)

// Order is the start-time ordering of a session listing.
type Order int

const (
	OrderAscending Order = iota
	OrderDescending
)

func (o Order) clause() string {
	if o == OrderDescending {
		return "start_time DESC, id DESC"
	}
	return "start_time ASC, id ASC"
}

// MaxReviewMinutes is the longest session a review may record: one week.
const MaxReviewMinutes = 7 * 24 * 60

// ReviewInput rewrites a session after the fact.
type ReviewInput struct {
	// TaskName renames the session's task when not empty.
	TaskName string
	// DurationMinutes sets the end to start + minutes. Must be between 1 and
	// MaxReviewMinutes.
	DurationMinutes int
	// MarkDone sets the task's completion flag when not nil.
	MarkDone *bool
}

// GetActiveSession returns the user's running session, or nil when there is
// none.
func (s *Store) GetActiveSession(ctx context.Context, user models.User) (*models.Session, error) {
	return activeSession(s.db.WithContext(ctx), user)
}

func activeSession(tx *gorm.DB, user models.User) (*models.Session, error) {
	var session models.Session
	err := tx.Preload("Task.Project").
		Where("user_id = ? AND end_time IS NULL", user.ID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No active session is not an error
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateNewSession starts tracking time on one of user's tasks. It fails with
// an *ActiveSessionError when the user already has a running session, and
// changes nothing in that case.
func (s *Store) CreateNewSession(ctx context.Context, user models.User, taskID uint) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, user, taskID)
		if err != nil {
			return err
		}

		active, err := activeSession(tx, user)
		if err != nil {
			return err
		}
		if active != nil {
			return &ActiveSessionError{Session: *active}
		}

		start := tx.NowFunc()
		session = models.Session{
			TaskID:    task.ID,
			UserID:    user.ID,
			StartTime: &start,
		}
		if err := tx.Omit(clause.Associations).Create(&session).Error; err != nil {
			return err
		}
		session.Task = *task

		return touch(tx, task.ID, task.ProjectID)
	})
	if isDuplicate(err) {
		// Lost a race with a concurrent start; report the winner.
		active, aerr := s.GetActiveSession(ctx, user)
		if aerr != nil {
			return nil, aerr
		}
		if active != nil {
			return nil, &ActiveSessionError{Session: *active}
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Uint("user_id", user.ID).
		Uint("session_id", session.ID).
		Uint("task_id", session.TaskID).
		Msg("session started")

	return &session, nil
}

// EndCurrentSession stops the user's running session. It returns nil without
// error when nothing is running.
func (s *Store) EndCurrentSession(ctx context.Context, user models.User) (*models.Session, error) {
	var ended *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := activeSession(tx, user)
		if err != nil || active == nil {
			return err
		}
		if err := endSession(tx, active); err != nil {
			return err
		}
		ended = active
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ended != nil {
		s.logger.Debug().
			Uint("user_id", user.ID).
			Uint("session_id", ended.ID).
			Int64("duration_seconds", ended.DurationSeconds()).
			Msg("session ended")
	}

	return ended, nil
}

// EndSession stops a specific session of user's. Ending a session that is
// already completed leaves it untouched.
func (s *Store) EndSession(ctx context.Context, user models.User, id uint) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = getSession(tx, user, id)
		if err != nil {
			return err
		}
		if !session.IsActive() {
			return nil
		}
		return endSession(tx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func endSession(tx *gorm.DB, session *models.Session) error {
	end := tx.NowFunc()
	err := tx.Model(&models.Session{}).
		Where("id = ?", session.ID).
		UpdateColumn("end_time", end).Error
	if err != nil {
		return err
	}
	session.EndTime = &end
	return touch(tx, session.TaskID, session.Task.ProjectID)
}

// GetSession retrieves one of user's sessions by ID
func (s *Store) GetSession(ctx context.Context, user models.User, id uint) (*models.Session, error) {
	return getSession(s.db.WithContext(ctx), user, id)
}

func getSession(tx *gorm.DB, user models.User, id uint) (*models.Session, error) {
	var session models.Session
	err := tx.Preload("Task.Project").
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("session", id)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ReviewSession corrects a session after the fact: the end is rewritten to
// start + DurationMinutes, and the task may be renamed and marked done. A
// running session is completed by its review.
func (s *Store) ReviewSession(ctx context.Context, user models.User, id uint, in ReviewInput) (*models.Session, error) {
	if in.DurationMinutes < 1 || in.DurationMinutes > MaxReviewMinutes {
		return nil, invalid("duration must be between 1 and %d minutes", MaxReviewMinutes)
	}

	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = getSession(tx, user, id)
		if err != nil {
			return err
		}
		if session.StartTime == nil {
			return invalid("session #%d has not started", id)
		}

		end := session.StartTime.UTC().Truncate(time.Second).Add(time.Duration(in.DurationMinutes) * time.Minute)
		err = tx.Model(&models.Session{}).
			Where("id = ?", session.ID).
			UpdateColumn("end_time", end).Error
		if err != nil {
			return err
		}
		session.EndTime = &end

		task := &session.Task
		if name := strings.TrimSpace(in.TaskName); name != "" {
			task.Name = name
		}
		if in.MarkDone != nil {
			task.SetDone(*in.MarkDone, tx.NowFunc())
		}
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}

		return touch(tx, 0, task.ProjectID)
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// SessionsByUserAndDateRange returns sessions across all of user's projects
// that started between start 00:00:00 and (start + extraDays) 23:59:59 in the
// user's time zone.
func (s *Store) SessionsByUserAndDateRange(ctx context.Context, user models.User, start calendar.Date, extraDays int, order Order) ([]models.Session, error) {
	if extraDays < 0 {
		return nil, invalid("extra days must not be negative")
	}
	from, to := calendar.Bounds(start, extraDays, user.Location())

	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Preload("Task.Project").
		Where("user_id = ?", user.ID).
		Where("start_time BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order(order.clause()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionsByProjectAndDateRange is SessionsByUserAndDateRange narrowed to one
// project, in ascending order.
func (s *Store) SessionsByProjectAndDateRange(ctx context.Context, user models.User, projectID uint, start calendar.Date, extraDays int) ([]models.Session, error) {
	if extraDays < 0 {
		return nil, invalid("extra days must not be negative")
	}
	if _, err := s.GetProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	from, to := calendar.Bounds(start, extraDays, user.Location())
	db := s.db.WithContext(ctx)

	var sessions []models.Session
	err := db.Preload("Task.Project").
		Where("user_id = ?", user.ID).
		Where("task_id IN (?)", projectTasks(db, projectID)).
		Where("start_time BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order(OrderAscending.clause()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionsByProject returns every session recorded under a project.
func (s *Store) SessionsByProject(ctx context.Context, user models.User, projectID uint) ([]models.Session, error) {
	if _, err := s.GetProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var sessions []models.Session
	err := db.Preload("Task.Project").
		Where("user_id = ? AND task_id IN (?)", user.ID, projectTasks(db, projectID)).
		Order(OrderDescending.clause()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionsByTask returns a task's sessions, newest first.
func (s *Store) SessionsByTask(ctx context.Context, user models.User, taskID uint) ([]models.Session, error) {
	if _, err := s.GetTask(ctx, user, taskID); err != nil {
		return nil, err
	}

	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Preload("Task.Project").
		Where("user_id = ? AND task_id = ?", user.ID, taskID).
		Order(OrderDescending.clause()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func projectTasks(tx *gorm.DB, projectID uint) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Task{}).
		Select("id").
		Where("project_id = ?", projectID)
}
