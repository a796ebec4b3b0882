package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/tick/internal/models"
)

// CreateUser registers a new user. timeZone must be an IANA zone name.
func (s *Store) CreateUser(ctx context.Context, email, timeZone string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email is required")
	}
	if _, err := time.LoadLocation(timeZone); err != nil {
		return nil, invalid("unknown time zone %q", timeZone)
	}

	user := models.User{Email: email, TimeZone: timeZone}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("user %s already exists: %w", email, ErrConflict)
		}
		return nil, err
	}

	return &user, nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateUser returns the user with email, creating it with timeZone
// on first use.
func (s *Store) FindOrCreateUser(ctx context.Context, email, timeZone string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where(models.User{Email: email}).
		Attrs(models.User{TimeZone: timeZone}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserTimeZone changes the zone used to bucket the user's sessions by day.
func (s *Store) SetUserTimeZone(ctx context.Context, user models.User, timeZone string) (*models.User, error) {
	if _, err := time.LoadLocation(timeZone); err != nil {
		return nil, invalid("unknown time zone %q", timeZone)
	}

	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("time_zone", timeZone)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("user", user.ID)
	}

	return s.GetUser(ctx, user.ID)
}
