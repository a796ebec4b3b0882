package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HandleDashboard(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	dashboard, err := h.reports.Dashboard(c, user)
	if err != nil {
		fail(c, err, "failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) HandleDaily(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	daysAgo, ok := intParam(c, "days_ago")
	if !ok {
		return
	}

	daily, err := h.reports.Daily(c, user, daysAgo)
	if err != nil {
		fail(c, err, "failed to build daily summary")
		return
	}

	c.JSON(http.StatusOK, daily)
}

func (h *Handler) HandleWeekly(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	weeksAgo, ok := intParam(c, "weeks_ago")
	if !ok {
		return
	}

	weekly, err := h.reports.Weekly(c, user, weeksAgo)
	if err != nil {
		fail(c, err, "failed to build weekly summary")
		return
	}

	c.JSON(http.StatusOK, weekly)
}
