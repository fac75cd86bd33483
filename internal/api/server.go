// Package api exposes the HTTP surface: uploads, job control, job status,
// stored file serving, and the websocket progress feed.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autobbq/internal/config"
	"autobbq/internal/logging"
	"autobbq/internal/queue"
	"autobbq/internal/services"
	"autobbq/internal/videos"
)

// Server wires the gin router to the video service and the job queue.
type Server struct {
	cfg    *config.Config
	videos *videos.Service
	pool   *queue.Pool
	hub    *Hub
	logger *slog.Logger
	router *gin.Engine
}

// NewServer constructs the HTTP server. The hub may be nil when the
// websocket feed is not wanted (tests).
func NewServer(cfg *config.Config, videoService *videos.Service, pool *queue.Pool, hub *Hub, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	server := &Server{
		cfg:    cfg,
		videos: videoService,
		pool:   pool,
		hub:    hub,
		logger: logging.NewComponentLogger(logger, "api"),
	}
	server.router = server.buildRouter()
	return server
}

// Handler returns the HTTP handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 32 << 20

	router.GET("/healthz", s.handleHealth)
	router.Static("/files", s.cfg.Paths.StorageDir)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/videos", s.handleUpload)
		apiGroup.GET("/videos", s.handleListVideos)
		apiGroup.GET("/videos/:id", s.handleGetVideo)
		apiGroup.POST("/videos/:id/process", s.handleProcess)
		apiGroup.POST("/videos/:id/render", s.handleRender)
		apiGroup.GET("/jobs/:id", s.handleGetJob)
	}

	if s.hub != nil {
		router.GET("/ws", s.hub.HandleConnection)
	}
	return router
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Paths.APIBind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.logger.Info("http server listening", logging.String("bind", s.cfg.Paths.APIBind))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// respondError maps the service error taxonomy onto HTTP statuses. Unknown
// errors yield a generic message; the detail stays in the logs and, for job
// failures, on the job record.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", logging.String("path", c.FullPath()), logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
