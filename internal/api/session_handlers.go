package api

import (
	"net/http"

	"github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/session"
	"github.com/andrev/phraseflash/internal/worker"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	log := logger.FromContext(r.Context())

	var req struct {
		SessionType     string `json:"session_type"`
		MaxItems        int    `json:"max_items"`
		EnableDrills    *bool  `json:"enable_drills"`
		EnableNarrative *bool  `json:"enable_narrative"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if req.SessionType == "" {
		req.SessionType = string(models.SessionTypeReview)
	}
	if req.MaxItems <= 0 {
		req.MaxItems = s.MaxItems
	}

	cfg := session.Config{
		ProfileID:       profile.ID,
		SessionType:     models.SessionType(req.SessionType),
		MaxItems:        req.MaxItems,
		EnableDrills:    req.EnableDrills == nil || *req.EnableDrills,
		EnableNarrative: req.EnableNarrative == nil || *req.EnableNarrative,
		Language: models.LanguageContext{
			SourceLang:  profile.SourceLang,
			TargetLang:  profile.TargetLang,
			Proficiency: profile.Proficiency,
		},
	}

	sess, orch, err := s.Sessions.Start(r.Context(), cfg)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if cfg.EnableDrills && s.ContentPool != nil {
		s.ContentPool.Submit(&worker.DrillPrefetchJob{Session: orch, SessionID: sess.ID})
	}

	log.Info("session %s started for profile %d", sess.ID, profile.ID)
	respondJSON(w, http.StatusCreated, map[string]any{
		"session": sess,
		"phase":   orch.CurrentPhase(),
	})
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	orch, err := s.Sessions.Get(profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats := orch.Stats()
	if stats == nil {
		handleError(w, r, errors.NewNoActiveSessionError())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session":     stats,
		"phase":       orch.CurrentPhase(),
		"progress":    orch.Progress(),
		"is_complete": orch.IsComplete(),
		"narrative":   orch.Narrative(),
		"drills":      orch.Drills(),
	})
}

func (s *Server) handleNextItem(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	orch, err := s.Sessions.Get(profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	item, err := orch.NextItem()
	if err != nil {
		handleError(w, r, err)
		return
	}

	// A nil item tells the client the drill queue is drained.
	respondJSON(w, http.StatusOK, map[string]any{
		"item":  item,
		"phase": orch.CurrentPhase(),
	})
}

func (s *Server) handleSubmitGrade(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req struct {
		ItemID              string   `json:"item_id"`
		Grade               int      `json:"grade"`
		ResponseTimeSeconds *float64 `json:"response_time_seconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	orch, err := s.Sessions.Get(profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := orch.SubmitGrade(r.Context(), req.ItemID, req.Grade, req.ResponseTimeSeconds); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session":     orch.Stats(),
		"phase":       orch.CurrentPhase(),
		"progress":    orch.Progress(),
		"is_complete": orch.IsComplete(),
	})
}

func (s *Server) handleSkipItem(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	orch, err := s.Sessions.Get(profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := orch.Skip(req.ItemID); err != nil {
		handleError(w, r, err)
		return
	}

	item, err := orch.NextItem()
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (s *Server) handleBeginNarrative(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	orch, err := s.Sessions.Get(profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	narrative, err := orch.BeginNarrative(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"narrative": narrative,
		"phase":     orch.CurrentPhase(),
	})
}

func (s *Server) handleBulkGrade(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req struct {
		Grade int `json:"grade"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	orch, err := s.Sessions.Get(profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := orch.ApplyBulkGrade(r.Context(), req.Grade); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session":     orch.Stats(),
		"phase":       orch.CurrentPhase(),
		"is_complete": orch.IsComplete(),
	})
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	orch, err := s.Sessions.Get(profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	final, err := orch.Complete(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.Sessions.Remove(profile.ID)

	respondJSON(w, http.StatusOK, final)
}
