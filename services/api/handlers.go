package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"sjsage522/cruisewatch/internal/report"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	latest := s.reports.Latest()
	if latest == nil {
		s.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}

	format := report.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := report.ParseFormat(q)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	if format == report.FormatJSON {
		s.respondWithJSON(w, http.StatusOK, latest)
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, latest, report.RenderOptions{Format: format}); err != nil {
		s.log.Error().Err(err).Str("format", string(format)).Msg("Failed to render report")
		s.respondWithError(w, http.StatusInternalServerError, "Could not render report")
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == report.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"status": "healthy"}
	healthy := true

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			s.log.Error().Err(err).Str("service", name).Msg("Health check failed")
			continue
		}
		healthStatus[name] = "healthy"
	}

	if latest := s.reports.Latest(); latest != nil {
		healthStatus["report"] = string(latest.State)
	} else {
		healthStatus["report"] = "loading"
	}

	if !healthy {
		healthStatus["status"] = "unhealthy"
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
		code = http.StatusInternalServerError
		response = []byte(`{"error":"encoding failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
