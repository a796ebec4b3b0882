package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/tick/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInvalidArgs = errors.New("invalid arguments")
)

// ActiveSessionError is returned when a session is started while another one
// is still running for the same user. It matches ErrConflict and carries the
// running session so callers can send the user to it.
type ActiveSessionError struct {
	Session models.Session
}

func (e *ActiveSessionError) Error() string {
	return fmt.Sprintf("session #%d already active for task #%d", e.Session.ID, e.Session.TaskID)
}

func (e *ActiveSessionError) Unwrap() error {
	return ErrConflict
}

func notFound(kind string, id uint) error {
	return fmt.Errorf("%s #%d %w", kind, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, fmt.Sprintf(format, args...))
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
