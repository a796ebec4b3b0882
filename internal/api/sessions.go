package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/tick/internal/db"
)

func (h *Handler) HandleGetActiveSession(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	session, err := h.store.GetActiveSession(c, user)
	if err != nil {
		fail(c, err, "failed to get active session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"active_session": session})
}

func (h *Handler) HandleTrackTask(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	session, err := h.store.CreateNewSession(c, user, taskID)
	if err != nil {
		fail(c, err, "failed to start session")
		return
	}

	requestLogger(c).Info().
		Uint("session_id", session.ID).
		Uint("task_id", taskID).
		Msg("started session")
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) HandleStopSession(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	session, err := h.store.EndCurrentSession(c, user)
	if err != nil {
		fail(c, err, "failed to end session")
		return
	}
	if session == nil {
		c.Status(http.StatusNoContent)
		return
	}

	requestLogger(c).Info().
		Uint("session_id", session.ID).
		Int64("duration_seconds", session.DurationSeconds()).
		Msg("ended session")
	c.JSON(http.StatusOK, session)
}

func (h *Handler) HandleEndSession(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	session, err := h.store.EndSession(c, user, id)
	if err != nil {
		fail(c, err, "failed to end session")
		return
	}

	c.JSON(http.StatusOK, session)
}

type reviewSessionRequest struct {
	TaskName        string `json:"task_name" binding:"max=280"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=10080"`
	MarkDone        *bool  `json:"mark_done,omitempty"`
}

func (h *Handler) HandleReviewSession(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req reviewSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c).Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	session, err := h.store.ReviewSession(c, user, id, db.ReviewInput{
		TaskName:        req.TaskName,
		DurationMinutes: req.DurationMinutes,
		MarkDone:        req.MarkDone,
	})
	if err != nil {
		fail(c, err, "failed to review session")
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) HandleListSessions(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	date, extraDays, ok := h.dateRangeQuery(c, user)
	if !ok {
		return
	}

	order := db.OrderAscending
	switch c.DefaultQuery("order", "asc") {
	case "asc":
	case "desc":
		order = db.OrderDescending
	default:
		abort(c, newBadRequestError("order must be asc or desc"))
		return
	}

	sessions, err := h.store.SessionsByUserAndDateRange(c, user, date, extraDays, order)
	if err != nil {
		fail(c, err, "failed to list sessions")
		return
	}

	c.JSON(http.StatusOK, sessions)
}
