// Package http exposes the command-search API over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/schoolsignal/rankd/internal/ranking"
)

// Searcher is the pipeline surface the server needs.
type Searcher interface {
	Search(ctx context.Context, req *ranking.SearchRequest) (*ranking.SearchResponse, error)
	Explain(ctx context.Context, districtID string, threshold float64) (*ranking.Explanation, error)
}

// Server serves the search and explanation endpoints.
type Server struct {
	echo     *echo.Echo
	searcher Searcher
	logger   *zap.Logger
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates the HTTP server with routes registered.
func NewServer(searcher Searcher, logger *zap.Logger, cfg *Config) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9040,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		searcher: searcher,
		logger:   logger,
		config:   cfg,
	}

	s.registerRoutes()

	return s, nil
}

// UseMetrics attaches the metrics middleware. Must be called before
// Start.
func (s *Server) UseMetrics(m *HTTPMetrics) {
	s.echo.Use(m.MetricsMiddleware())
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/search", s.handleSearch)
	v1.POST("/districts/:id/explanation", s.handleExplanation)
}

// ExplanationRequest is the request body for the on-demand explanation
// endpoint.
type ExplanationRequest struct {
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleSearch runs the full ranking pipeline. Upstream failures map to
// 502: the caller can retry, nothing about the request was wrong. An
// empty district list with a 200 means filtering legitimately exhausted
// the candidates.
func (s *Server) handleSearch(c echo.Context) error {
	var req ranking.SearchRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid search request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt field is required")
	}

	resp, err := s.searcher.Search(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ranking.ErrRankingUnavailable) {
			s.logger.Error("search upstream unavailable", zap.Error(err))
			return echo.NewHTTPError(http.StatusBadGateway, "ranking unavailable")
		}
		s.logger.Error("search failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, resp)
}

// handleExplanation recomputes a standalone explanation for one
// district. A missing district is 404, never an empty body.
func (s *Server) handleExplanation(c echo.Context) error {
	districtID := c.Param("id")
	if districtID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "district id is required")
	}

	var req ExplanationRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid explanation request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	exp, err := s.searcher.Explain(c.Request().Context(), districtID, req.ConfidenceThreshold)
	if err != nil {
		switch {
		case errors.Is(err, ranking.ErrDistrictNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "district not found")
		case errors.Is(err, ranking.ErrRankingUnavailable):
			s.logger.Error("explanation upstream unavailable", zap.Error(err))
			return echo.NewHTTPError(http.StatusBadGateway, "ranking unavailable")
		default:
			s.logger.Error("explanation failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "explanation failed")
		}
	}

	return c.JSON(http.StatusOK, exp)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
