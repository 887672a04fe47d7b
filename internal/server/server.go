// Package server exposes search, weights and songs over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/metrics"
	"github.com/songslide/songslide/internal/search"
)

// Deps are the collaborators a Server needs. Searcher is usually a
// searchcache.Cache around Engine; when nil, Engine is used directly.
type Deps struct {
	Store    data.DataSource
	Engine   *search.Engine
	Searcher search.Searcher
	// Invalidate is called after new weights are stored.
	Invalidate []func()
	Logger     *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	store      data.DataSource
	engine     *search.Engine
	searcher   search.Searcher
	invalidate []func()
	logger     *slog.Logger
	router     *gin.Engine
}

// New builds a Server and registers its routes.
func New(d Deps) *Server {
	s := &Server{
		store:      d.Store,
		engine:     d.Engine,
		searcher:   d.Searcher,
		invalidate: d.Invalidate,
		logger:     d.Logger,
	}
	if s.searcher == nil {
		s.searcher = s.engine
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.router = gin.New()
	s.router.Use(requestLogger(s.logger), gin.Recovery())
	metrics.Register()
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api := s.router.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/search", s.searchSongs)
		api.GET("/search-weight", s.getWeights)
		api.POST("/search-weight", s.postWeights)
		api.POST("/songs", s.createSong)
		api.GET("/songs/:id", s.getSong)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// RequestIDHeader carries the request ID, taken from the client when present.
const RequestIDHeader = "X-Request-ID"

// requestLogger tags each request with an ID and logs one line per request
// through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "err", c.Errors.String())
		}
		switch {
		case status >= 500:
			logger.Error("request", attrs...)
		case status >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Debug("request", attrs...)
		}
	}
}
