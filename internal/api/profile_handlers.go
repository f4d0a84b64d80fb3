package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.Profiles.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req struct {
		Username    string `json:"username"`
		SourceLang  string `json:"source_lang"`
		TargetLang  string `json:"target_lang"`
		Proficiency string `json:"proficiency"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		log.Warn("create profile with empty username")
		handleError(w, r, errors.NewValidationError("username", "cannot be empty"))
		return
	}
	if req.SourceLang == "" {
		req.SourceLang = s.DefaultLang
	}
	if req.TargetLang == "" {
		req.TargetLang = s.TargetLang
	}

	profile, err := s.Profiles.Upsert(r.Context(), models.Profile{
		Username:    username,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
		Proficiency: req.Proficiency,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	setProfileCookie(w, profile.ID)
	respondJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleSelectProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Warn("invalid profile id: %s", idStr)
		handleError(w, r, errors.NewBadRequestError("invalid profile id"))
		return
	}

	profile, err := s.Profiles.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if profile == nil {
		handleError(w, r, errors.NewNotFoundError("profile", id))
		return
	}

	setProfileCookie(w, profile.ID)
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid profile id"))
		return
	}

	if err := s.Profiles.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	s.Sessions.Remove(id)

	if current := profileFromContext(r.Context()); current != nil && current.ID == id {
		clearProfileCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}
