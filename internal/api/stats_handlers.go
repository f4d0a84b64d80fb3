package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	study, err := s.Stats.StudyStats(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	daily, err := s.Stats.DailyStats(r.Context(), profile.ID, days)
	if err != nil {
		handleError(w, r, err)
		return
	}
	grades, err := s.Stats.GradeDistribution(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	recent, err := s.SessionRepo.ListRecent(r.Context(), profile.ID, 10)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"study":              study,
		"daily":              daily,
		"grade_distribution": grades,
		"recent_sessions":    recent,
	})
}
