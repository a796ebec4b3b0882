package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/tick/internal/db"
)

type createProjectRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Color string `json:"color,omitempty"`
}

func (h *Handler) HandleCreateProject(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c).Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	project, err := h.store.CreateProject(c, user, db.CreateProjectRequest{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		fail(c, err, "failed to create project")
		return
	}

	requestLogger(c).Info().
		Uint("project_id", project.ID).
		Msg("created project")
	c.JSON(http.StatusCreated, project)
}

// HandleListProjects lists active projects, or archived ones with
// ?archived=true.
func (h *Handler) HandleListProjects(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	archived, err := strconv.ParseBool(c.DefaultQuery("archived", "false"))
	if err != nil {
		abort(c, newBadRequestError("archived must be a boolean"))
		return
	}

	projects, err := h.store.ListProjects(c, user, !archived)
	if err != nil {
		fail(c, err, "failed to list projects")
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *Handler) HandleGetProject(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.reports.ProjectDetail(c, user, id)
	if err != nil {
		fail(c, err, "failed to get project")
		return
	}

	c.JSON(http.StatusOK, detail)
}

type updateProjectRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Color *string `json:"color,omitempty"`
}

func (h *Handler) HandleUpdateProject(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c).Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	project, err := h.store.UpdateProject(c, user, id, db.UpdateProjectRequest{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		fail(c, err, "failed to update project")
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) HandleArchiveProject(c *gin.Context) {
	h.setProjectActive(c, false)
}

func (h *Handler) HandleUnarchiveProject(c *gin.Context) {
	h.setProjectActive(c, true)
}

func (h *Handler) setProjectActive(c *gin.Context, active bool) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	project, err := h.store.SetProjectActive(c, user, id, active)
	if err != nil {
		fail(c, err, "failed to change project state")
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) HandleDeleteProject(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteProject(c, user, id); err != nil {
		fail(c, err, "failed to delete project")
		return
	}

	requestLogger(c).Info().
		Uint("project_id", id).
		Msg("deleted project")
	c.Status(http.StatusNoContent)
}
