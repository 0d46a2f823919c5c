package api

import (
	"context"
	"net/http"
	"time"

	"sjsage522/cruisewatch/internal/monitoring"
	"sjsage522/cruisewatch/internal/report"
	"sjsage522/cruisewatch/logger"
)

// ReportSource provides the latest report, nil until the first run completes
type ReportSource interface {
	Latest() *report.Report
}

// HealthCheck reports whether one backing service is reachable
type HealthCheck func(ctx context.Context) error

// Server holds the dependencies for the HTTP status server.
type Server struct {
	addr       string
	router     http.Handler
	httpServer *http.Server
	reports    ReportSource
	checks     map[string]HealthCheck
	metrics    *monitoring.Metrics
	log        *logger.Logger
}

// NewServer creates a server listening on addr. checks may be empty.
func NewServer(addr string, reports ReportSource, checks map[string]HealthCheck, m *monitoring.Metrics) *Server {
	s := &Server{
		addr:    addr,
		reports: reports,
		checks:  checks,
		metrics: m,
		log:     logger.ForServer(),
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("Status server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
