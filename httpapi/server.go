// Package httpapi exposes the REST surface (registration, login, project and
// task CRUD) and mounts the realtime chat endpoint on the same router.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"taskroom/auth"
	"taskroom/realtime"
	"taskroom/services"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

type Server struct {
	auth     services.IAuthService
	projects services.IProjectService
	resolver *auth.Resolver
	chat     *realtime.Handler
	validate *validator.Validate
	log      *slog.Logger

	httpServer *http.Server
}

func NewServer(
	addr string,
	authService services.IAuthService,
	projectService services.IProjectService,
	resolver *auth.Resolver,
	chat *realtime.Handler,
	log *slog.Logger,
) *Server {
	s := &Server{
		auth:     authService,
		projects: projectService,
		resolver: resolver,
		chat:     chat,
		validate: validator.New(),
		log:      log,
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Router()}
	return s
}

func (s *Server) Router() http.Handler {
	router := httprouter.New()

	router.POST("/api/register", s.handleRegister)
	router.POST("/api/login", s.handleLogin)

	router.GET("/api/projects", s.handleListProjects)
	router.GET("/api/projects/:project_id", s.handleGetProject)
	router.POST("/api/projects", s.requireAuth(s.handleCreateProject))
	router.POST("/api/projects/:project_id/tasks", s.requireAuth(s.handleCreateTask))
	router.POST("/api/tasks/:task_id/complete", s.requireAuth(s.handleCompleteTask))

	// Chat does its own credential handling from the ?token= query parameter
	router.GET("/ws/projects/:project_id", s.chat.ServeProjectChat)

	return router
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed after a
// graceful Shutdown is reported as a clean exit.
func (s *Server) ListenAndServe() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
