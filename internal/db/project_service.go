package db

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/tick/internal/models"
)

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CreateProjectRequest holds the data needed to create a new project
type CreateProjectRequest struct {
	Name  string
	Color string
}

// UpdateProjectRequest changes the fields that are set.
type UpdateProjectRequest struct {
	Name  *string
	Color *string
}

// CreateProject creates an active project owned by user
func (s *Store) CreateProject(ctx context.Context, user models.User, req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("project name is required")
	}
	color := req.Color
	if color == "" {
		color = models.DefaultProjectColor
	}
	if !colorRegex.MatchString(color) {
		return nil, invalid("color must look like #RRGGBB, got %q", color)
	}

	project := models.Project{
		UserID: user.ID,
		Name:   name,
		Color:  color,
		Active: true,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// GetProject retrieves one of user's projects by ID
func (s *Store) GetProject(ctx context.Context, user models.User, id uint) (*models.Project, error) {
	return getProject(s.db.WithContext(ctx), user, id)
}

func getProject(tx *gorm.DB, user models.User, id uint) (*models.Project, error) {
	var project models.Project
	err := tx.Where("id = ? AND user_id = ?", id, user.ID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns user's active or archived projects, most recently
// touched first.
func (s *Store) ListProjects(ctx context.Context, user models.User, active bool) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", user.ID, active).
		Order("last_edited DESC, id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// RecentProjects returns up to limit of user's projects, archived ones
// included, most recently touched first.
func (s *Store) RecentProjects(ctx context.Context, user models.User, limit int) ([]models.Project, error) {
	if limit < 1 {
		return nil, invalid("limit must be positive")
	}

	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("last_edited DESC, id DESC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateProject renames or recolors a project
func (s *Store) UpdateProject(ctx context.Context, user models.User, id uint, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetProject(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("project name is required")
		}
		project.Name = name
	}
	if req.Color != nil {
		if !colorRegex.MatchString(*req.Color) {
			return nil, invalid("color must look like #RRGGBB, got %q", *req.Color)
		}
		project.Color = *req.Color
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// SetProjectActive archives (active=false) or restores a project
func (s *Store) SetProjectActive(ctx context.Context, user models.User, id uint, active bool) (*models.Project, error) {
	project, err := s.GetProject(ctx, user, id)
	if err != nil {
		return nil, err
	}

	project.Active = active
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project together with its tasks and sessions
func (s *Store) DeleteProject(ctx context.Context, user models.User, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, user.ID).
		Delete(&models.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("project", id)
	}
	return nil
}

// touch bumps last_edited on a task and its project without loading them.
func touch(tx *gorm.DB, taskID, projectID uint) error {
	now := tx.NowFunc()
	if taskID != 0 {
		err := tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			UpdateColumn("last_edited", now).Error
		if err != nil {
			return err
		}
	}
	return tx.Model(&models.Project{}).
		Where("id = ?", projectID).
		UpdateColumn("last_edited", now).Error
}
