package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/models"
)

func (s *Server) handleListPhrases(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	q := r.URL.Query()
	filter := models.PhraseFilter{
		ProfileID: profile.ID,
		Search:    q.Get("search"),
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	phrases, err := s.Phrases.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	total, err := s.Phrases.Count(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"phrases": phrases,
		"total":   total,
	})
}

func (s *Server) handleCreatePhrase(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req struct {
		Text        string `json:"text"`
		Translation string `json:"translation"`
		Context     string `json:"context"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	req.Translation = strings.TrimSpace(req.Translation)
	if req.Text == "" {
		handleError(w, r, errors.NewValidationError("text", "cannot be empty"))
		return
	}
	if req.Translation == "" {
		handleError(w, r, errors.NewValidationError("translation", "cannot be empty"))
		return
	}

	id, err := s.Phrases.Insert(r.Context(), models.Phrase{
		ProfileID:   profile.ID,
		Text:        req.Text,
		Translation: req.Translation,
		Context:     req.Context,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	phrase, err := s.Phrases.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, phrase)
}

func (s *Server) handleDeletePhrase(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid phrase id"))
		return
	}

	phrase, err := s.Phrases.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if phrase == nil || phrase.ProfileID != profile.ID {
		handleError(w, r, errors.NewNotFoundError("phrase", id))
		return
	}

	if err := s.Phrases.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
