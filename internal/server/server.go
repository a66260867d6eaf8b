package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriscan/backend/config"
	"github.com/pageza/nutriscan/backend/internal/api"
	"github.com/pageza/nutriscan/backend/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	http    *http.Server
	closers []func() error
}

// New creates a new server instance serving deps
func New(cfg *config.Config, deps api.Deps) *Server {
	gin.SetMode(config.GetEnvironment().GinMode())

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	api.RegisterRoutes(router, deps)

	return &Server{
		cfg:    cfg,
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the HTTP handler of the server
func (s *Server) Router() http.Handler {
	return s.router
}

// OnShutdown registers a resource to release after the listener stops
func (s *Server) OnShutdown(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	log.Printf("Server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases its resources
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	// Release in reverse order of acquisition
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](); cerr != nil {
			log.Printf("Error releasing server resource: %v", cerr)
		}
	}
	s.closers = nil
	return err
}
