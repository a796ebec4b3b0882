// Package api serves the tracker over HTTP as JSON. Every route except
// /ping acts on behalf of the user named by the request's bearer token.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
	"github.com/balkashynov/tick/internal/report"
)

// Store is the storage the handlers read and write.
type Store interface {
	report.Store

	GetUser(ctx context.Context, id uint) (*models.User, error)

	CreateNewSession(ctx context.Context, user models.User, taskID uint) (*models.Session, error)
	EndCurrentSession(ctx context.Context, user models.User) (*models.Session, error)
	EndSession(ctx context.Context, user models.User, id uint) (*models.Session, error)
	ReviewSession(ctx context.Context, user models.User, id uint, in db.ReviewInput) (*models.Session, error)

	CreateProject(ctx context.Context, user models.User, req db.CreateProjectRequest) (*models.Project, error)
	ListProjects(ctx context.Context, user models.User, active bool) ([]models.Project, error)
	UpdateProject(ctx context.Context, user models.User, id uint, req db.UpdateProjectRequest) (*models.Project, error)
	SetProjectActive(ctx context.Context, user models.User, id uint, active bool) (*models.Project, error)
	DeleteProject(ctx context.Context, user models.User, id uint) error

	CreateTask(ctx context.Context, user models.User, req db.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, user models.User, id uint, req db.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, user models.User, id uint) error
}

type Handler struct {
	store   Store
	reports *report.Service
	tokens  *Tokens
	now     func() time.Time
}

type Option func(*Handler)

// WithClock replaces time.Now for resolving "today" in query defaults.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func New(store Store, reports *report.Service, tokens *Tokens, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		reports: reports,
		tokens:  tokens,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// mustUser returns the authenticated user or aborts the request.
func mustUser(c *gin.Context) (models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		requestLogger(c).Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(http.StatusText(http.StatusUnauthorized)))
	}
	return user, ok
}

// idParam parses the named path parameter as a positive ID or aborts.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		requestLogger(c).Warn().
			Str(name, c.Param(name)).
			Msg("invalid id")
		abort(c, newBadRequestError(errInvalidID.Error()))
		return 0, false
	}
	return uint(id), true
}

// intParam parses a non-negative integer path parameter or aborts.
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		abort(c, newBadRequestError(name+" must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

// dateRangeQuery reads ?date=YYYY-MM-DD&extra_days=N, defaulting to today
// in the user's zone and no extra days.
func (h *Handler) dateRangeQuery(c *gin.Context, user models.User) (calendar.Date, int, bool) {
	date := calendar.Today(h.now(), user.Location())
	if raw := c.Query("date"); raw != "" {
		parsed, err := calendar.Parse(raw)
		if err != nil {
			abort(c, newBadRequestError(err.Error()))
			return calendar.Date{}, 0, false
		}
		date = parsed
	}

	extraDays := 0
	if raw := c.Query("extra_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > calendar.MaxDaysBack {
			abort(c, newBadRequestError(fmt.Sprintf("extra_days must be between 0 and %d", calendar.MaxDaysBack)))
			return calendar.Date{}, 0, false
		}
		extraDays = n
	}

	return date, extraDays, true
}

// fail logs err and aborts with its mapped status.
func fail(c *gin.Context, err error, msg string) {
	apiErr := storeError(err)
	log := requestLogger(c)
	if apiErr.Code >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Warn().Err(err).Msg(msg)
	}
	abort(c, apiErr)
}
