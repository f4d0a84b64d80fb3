package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/logger"
)

func (s *Server) handleStoreCredential(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	key := chi.URLParam(r, "key")

	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Value == "" {
		handleError(w, r, errors.NewValidationError("value", "cannot be empty"))
		return
	}

	s.Credentials.Set(service, key, req.Value)
	logger.FromContext(r.Context()).Info("stored credential %s:%s", service, key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	key := chi.URLParam(r, "key")

	value, ok := s.Credentials.Get(service, key)
	if !ok {
		handleError(w, r, errors.NewNotFoundError("credential", service+":"+key))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"value": value})
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	key := chi.URLParam(r, "key")

	s.Credentials.Delete(service, key)
	w.WriteHeader(http.StatusNoContent)
}
