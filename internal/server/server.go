// Package server implements the REST API of the student portal.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"studentdesk/internal/logging"
	"studentdesk/internal/server/storage"
)

// Options configures the API server.
type Options struct {
	// Address is the listen address, host:port.
	Address string
	// Storage is the database layer.
	Storage *storage.Storage
	// UploadDir is where homework attachments are stored.
	UploadDir string
	// DisableReqLogs disables the request logging middleware, used by tests.
	DisableReqLogs bool
}

// Server is the portal API server.
type Server struct {
	opts Options
	app  *echo.Echo
	log  logging.Logger
}

// New creates a configured Server.
func New(opts Options) *Server {
	s := &Server{
		opts: opts,
		app:  echo.New(),
		log:  logging.GetGlobal().With("component", "server"),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.Recover())

	h := &handlers{storage: s.opts.Storage, uploadDir: s.opts.UploadDir, log: s.log}

	s.app.POST("/register", h.register)
	s.app.POST("/login", h.login)
	s.app.GET("/students/:id/schedule", h.schedule)
	s.app.GET("/students/:id/homework", h.listHomework)
	s.app.POST("/students/:id/homework", h.submitHomework)
	s.app.GET("/homework/:id/download", h.downloadAttachment)
	s.app.GET("/students/:id/grades", h.grades)
	s.app.POST("/admin/push_homework", h.pushHomework)
}

// Start listens on the configured address until the server is shut down.
func (s *Server) Start() error {
	s.log.Info("server listening", "address", s.opts.Address)
	err := s.app.Start(s.opts.Address)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}
