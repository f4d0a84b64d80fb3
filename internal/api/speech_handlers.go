package api

import (
	"net/http"
	"strings"

	"github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/models"
)

// handleSpeech renders phrase audio for listening practice. The synthesizer
// is optional; without one (or without a key) the endpoint reports a
// provider failure and the UI hides the audio button.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		handleError(w, r, errors.NewValidationError("text", "cannot be empty"))
		return
	}

	if s.Speech == nil {
		handleError(w, r, errors.NewProviderFailureError("speech", nil))
		return
	}

	audio, err := s.Speech.Synthesize(r.Context(), req.Text, models.LanguageContext{
		SourceLang:  profile.SourceLang,
		TargetLang:  profile.TargetLang,
		Proficiency: profile.Proficiency,
	})
	if err != nil {
		handleError(w, r, errors.NewProviderFailureError("speech", err))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
