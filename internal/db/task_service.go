package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/models"
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	ProjectID uint
	Name      string
	IsDone    bool
}

// UpdateTaskRequest changes the fields that are set.
type UpdateTaskRequest struct {
	Name      *string
	ProjectID *uint
	IsDone    *bool
}

// userProjects selects the IDs of user's projects, for use as a subquery.
func userProjects(tx *gorm.DB, user models.User, activeOnly bool) *gorm.DB {
	q := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Project{}).
		Select("id").
		Where("user_id = ?", user.ID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	return q
}

// CreateTask creates a task in one of user's active projects
func (s *Store) CreateTask(ctx context.Context, user models.User, req CreateTaskRequest) (*models.Task, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("task name is required")
	}

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := getProject(tx, user, req.ProjectID)
		if err != nil {
			return err
		}
		if !project.Active {
			return invalid("project #%d is archived", project.ID)
		}

		task = models.Task{
			ProjectID: project.ID,
			Name:      name,
			IsDone:    req.IsDone,
		}
		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return err
		}
		task.Project = *project

		return touch(tx, 0, project.ID)
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// GetTask retrieves one of user's tasks by ID
func (s *Store) GetTask(ctx context.Context, user models.User, id uint) (*models.Task, error) {
	return getTask(s.db.WithContext(ctx), user, id)
}

func getTask(tx *gorm.DB, user models.User, id uint) (*models.Task, error) {
	var task models.Task
	err := tx.Preload("Project").
		Where("id = ? AND project_id IN (?)", id, userProjects(tx, user, false)).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask renames a task, moves it to another project or flips its
// completion flag. The affected projects are touched.
func (s *Store) UpdateTask(ctx context.Context, user models.User, id uint, req UpdateTaskRequest) (*models.Task, error) {
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = getTask(tx, user, id)
		if err != nil {
			return err
		}
		previousProjectID := task.ProjectID

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return invalid("task name is required")
			}
			task.Name = name
		}
		if req.ProjectID != nil && *req.ProjectID != task.ProjectID {
			project, err := getProject(tx, user, *req.ProjectID)
			if err != nil {
				return err
			}
			if !project.Active {
				return invalid("project #%d is archived", project.ID)
			}
			task.ProjectID = project.ID
			task.Project = *project
		}
		if req.IsDone != nil {
			task.SetDone(*req.IsDone, tx.NowFunc())
		}

		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}

		if previousProjectID != task.ProjectID {
			if err := touch(tx, 0, previousProjectID); err != nil {
				return err
			}
		}
		return touch(tx, 0, task.ProjectID)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// SetTaskDone marks a task as completed or back to pending
func (s *Store) SetTaskDone(ctx context.Context, user models.User, id uint, done bool) (*models.Task, error) {
	return s.UpdateTask(ctx, user, id, UpdateTaskRequest{IsDone: &done})
}

// DeleteTask removes a task and its sessions
func (s *Store) DeleteTask(ctx context.Context, user models.User, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, user, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Task{}, task.ID).Error; err != nil {
			return err
		}
		return touch(tx, 0, task.ProjectID)
	})
}

// TasksByProject returns a project's pending or done tasks, most recently
// touched first.
func (s *Store) TasksByProject(ctx context.Context, user models.User, projectID uint, isDone bool) ([]models.Task, error) {
	if _, err := s.GetProject(ctx, user, projectID); err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Preload("Project").
		Where("project_id = ? AND is_done = ?", projectID, isDone).
		Order("last_edited DESC, id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// TasksByUserAndIsActive returns tasks under user's non-archived projects
// with the given completion flag, most recently touched first.
func (s *Store) TasksByUserAndIsActive(ctx context.Context, user models.User, isDone bool) ([]models.Task, error) {
	db := s.db.WithContext(ctx)

	var tasks []models.Task
	err := db.Preload("Project").
		Where("project_id IN (?) AND is_done = ?", userProjects(db, user, true), isDone).
		Order("last_edited DESC, id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// TasksByUserAndDoneDateWithin returns tasks completed between date 00:00:00
// and (date + extraDays) 23:59:59 in the user's time zone, most recently
// completed first.
func (s *Store) TasksByUserAndDoneDateWithin(ctx context.Context, user models.User, date calendar.Date, extraDays int) ([]models.Task, error) {
	if extraDays < 0 {
		return nil, invalid("extra days must not be negative")
	}
	from, to := calendar.Bounds(date, extraDays, user.Location())
	db := s.db.WithContext(ctx)

	var tasks []models.Task
	err := db.Preload("Project").
		Where("project_id IN (?)", userProjects(db, user, false)).
		Where("done_at BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order("done_at DESC, id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
