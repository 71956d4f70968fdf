// Package server wires the jokes API onto gin and owns the HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"dtokit/src/app/http/handler"
	"dtokit/src/app/http/response"
	"dtokit/src/app/middleware"
	"dtokit/src/core/ports"
	"dtokit/src/core/usecase"
	"dtokit/src/infra/config"
	"dtokit/src/infra/logger"
)

// Server is the jokes API bound to one repository.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	health *handler.HealthHandler
	jokes  *handler.JokeHandler
}

// New builds the router for repo. The repository doubles as the "storage"
// component of the detailed health check.
func New(cfg *config.Config, log *slog.Logger, repo ports.JokeRepository) *Server {
	mode := gin.ReleaseMode
	if cfg.Log.Level == "debug" {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	s := &Server{
		cfg:    cfg,
		log:    log,
		router: gin.New(),
		health: handler.NewHealthHandler(
			usecase.NewHealthService(log, map[string]ports.Repository{"storage": repo}),
		),
		jokes: handler.NewJokeHandler(
			usecase.NewJokeService(repo, logger.WithComponent(log, "jokes")),
		),
	}
	s.routes()

	s.http = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	// recovery first so it sees panics from every later handler
	s.router.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(s.cfg.Server.CORSOrigin),
		middleware.Logging(s.log),
		middleware.BodyLimit(s.cfg.Payload.MaxBodyBytes),
	)

	s.router.GET("/health", s.health.Health)
	s.router.GET("/health/detailed", s.health.DetailedHealth)

	jokes := s.router.Group("/v1/jokes")
	jokes.POST("", s.jokes.Create)
	jokes.POST("/batch", s.jokes.CreateBatch)
	jokes.GET("", s.jokes.List)
	jokes.GET("/:id", s.jokes.Get)
	jokes.PATCH("/:id", s.jokes.Update)
	jokes.DELETE("/:id", s.jokes.Delete)

	s.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "The requested resource was not found", middleware.GetRequestID(c))
	})
}

// Router exposes the gin engine, mainly for httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run listens on the configured address and serves until ctx is done or the
// process gets SIGINT/SIGTERM, then drains connections for at most the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving HTTP", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.Info("shutdown requested", "cause", context.Cause(ctx))
	}
	return s.shutdown()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
