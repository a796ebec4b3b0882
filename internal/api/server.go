package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/balkashynov/tick/internal/config"
)

// NewRouter wires the handler's routes onto a gin engine.
func NewRouter(h *Handler, logger zerolog.Logger, env string) *gin.Engine {
	if env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestLogging(logger))
	router.Use(gin.Recovery())
	registerRoutes(router, h)
	return router
}

func registerRoutes(router gin.IRouter, h *Handler) {
	router.GET("/ping", h.HandlePing)

	v1 := router.Group("/api/v1", h.HandleAuthMiddleware)

	v1.GET("/session/active", h.HandleGetActiveSession)
	v1.POST("/session/stop", h.HandleStopSession)
	v1.GET("/sessions", h.HandleListSessions)
	v1.POST("/sessions/:id/end", h.HandleEndSession)
	v1.PUT("/sessions/:id/review", h.HandleReviewSession)

	v1.GET("/projects", h.HandleListProjects)
	v1.POST("/projects", h.HandleCreateProject)
	v1.GET("/projects/:id", h.HandleGetProject)
	v1.PATCH("/projects/:id", h.HandleUpdateProject)
	v1.DELETE("/projects/:id", h.HandleDeleteProject)
	v1.POST("/projects/:id/archive", h.HandleArchiveProject)
	v1.POST("/projects/:id/unarchive", h.HandleUnarchiveProject)
	v1.POST("/projects/:id/tasks", h.HandleCreateTask)

	v1.GET("/tasks", h.HandleListTasks)
	v1.GET("/tasks/done", h.HandleListDoneTasks)
	v1.GET("/tasks/:id", h.HandleGetTask)
	v1.PATCH("/tasks/:id", h.HandleUpdateTask)
	v1.DELETE("/tasks/:id", h.HandleDeleteTask)
	v1.POST("/tasks/:id/track", h.HandleTrackTask)

	v1.GET("/summary/dashboard", h.HandleDashboard)
	v1.GET("/summary/daily/:days_ago", h.HandleDaily)
	v1.GET("/summary/weekly/:weeks_ago", h.HandleWeekly)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func Serve(ctx context.Context, cfg config.HTTPConfig, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("host", cfg.Host).
			Str("port", cfg.Port).
			Msg("setting up http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("shut down http server")
	return nil
}
