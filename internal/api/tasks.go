package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/tick/internal/db"
)

type createTaskRequest struct {
	Name   string `json:"name" binding:"required,max=280"`
	IsDone bool   `json:"is_done"`
}

func (h *Handler) HandleCreateTask(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c).Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.store.CreateTask(c, user, db.CreateTaskRequest{
		ProjectID: projectID,
		Name:      req.Name,
		IsDone:    req.IsDone,
	})
	if err != nil {
		fail(c, err, "failed to create task")
		return
	}

	requestLogger(c).Info().
		Uint("task_id", task.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, task)
}

// HandleListTasks lists the tasks of active projects, pending by default or
// completed with ?done=true.
func (h *Handler) HandleListTasks(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	done, err := strconv.ParseBool(c.DefaultQuery("done", "false"))
	if err != nil {
		abort(c, newBadRequestError("done must be a boolean"))
		return
	}

	tasks, err := h.store.TasksByUserAndIsActive(c, user, done)
	if err != nil {
		fail(c, err, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// HandleListDoneTasks lists tasks completed within ?date and ?extra_days.
func (h *Handler) HandleListDoneTasks(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	date, extraDays, ok := h.dateRangeQuery(c, user)
	if !ok {
		return
	}

	tasks, err := h.store.TasksByUserAndDoneDateWithin(c, user, date, extraDays)
	if err != nil {
		fail(c, err, "failed to list done tasks")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) HandleGetTask(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.reports.TaskDetail(c, user, id)
	if err != nil {
		fail(c, err, "failed to get task")
		return
	}

	c.JSON(http.StatusOK, detail)
}

type updateTaskRequest struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,max=280"`
	ProjectID *uint   `json:"project_id,omitempty"`
	IsDone    *bool   `json:"is_done,omitempty"`
}

func (h *Handler) HandleUpdateTask(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c).Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.store.UpdateTask(c, user, id, db.UpdateTaskRequest{
		Name:      req.Name,
		ProjectID: req.ProjectID,
		IsDone:    req.IsDone,
	})
	if err != nil {
		fail(c, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) HandleDeleteTask(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteTask(c, user, id); err != nil {
		fail(c, err, "failed to delete task")
		return
	}

	requestLogger(c).Info().
		Uint("task_id", id).
		Msg("deleted task")
	c.Status(http.StatusNoContent)
}
