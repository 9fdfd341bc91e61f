// Package server exposes place search, selection and the map view over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/dialysphere/internal/locator"
	"github.com/UnknownOlympus/dialysphere/internal/models"
	"github.com/UnknownOlympus/dialysphere/internal/places"
	"github.com/UnknownOlympus/dialysphere/internal/selection"
	"github.com/gin-gonic/gin"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Searcher looks up places. *places.GoogleSearch implements it.
type Searcher interface {
	Autocomplete(ctx context.Context, input string) ([]places.Prediction, error)
	Resolve(ctx context.Context, placeID string) (models.Selection, error)
}

// Session accepts selections and renders the map. *selection.Session implements it.
type Session interface {
	Select(sel models.Selection) (models.Selection, uint64)
	View() selection.View
}

// Server is the JSON API.
type Server struct {
	log     *slog.Logger
	search  Searcher
	matcher locator.Matcher
	session Session
}

// NewServer creates a Server. search may be nil, in which case the endpoints
// that need it answer 503.
func NewServer(log *slog.Logger, search Searcher, matcher locator.Matcher, session Session) *Server {
	return &Server{log: log, search: search, matcher: matcher, session: session}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	api.GET("/places/autocomplete", s.autocomplete)
	api.POST("/selection", s.selectLocation)
	api.GET("/map", s.mapView)
	api.GET("/facilities", s.facilities)

	return router
}

// Run serves the API on port until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting API server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.log.InfoContext(ctx, "Stopping API server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown api server: %w", err)
	}

	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.DebugContext(c.Request.Context(), "Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
