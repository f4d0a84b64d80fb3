package api

import (
	"net/http"

	"github.com/andrev/phraseflash/internal/logger"
)

// handleHealth is a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady reports whether the service can accept traffic, checking that
// the database answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.PingContext(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("readiness check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Database unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
