package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/profiles", s.handleListProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Post("/profiles/{id}/select", s.handleSelectProfile)
		r.Delete("/profiles/{id}", s.handleDeleteProfile)

		r.Route("/credentials/{service}/{key}", func(r chi.Router) {
			r.Post("/", s.handleStoreCredential)
			r.Get("/", s.handleGetCredential)
			r.Delete("/", s.handleDeleteCredential)
		})

		// Everything below needs a selected profile.
		r.Group(func(r chi.Router) {
			r.Use(s.profileMiddleware)

			r.Get("/phrases", s.handleListPhrases)
			r.Post("/phrases", s.handleCreatePhrase)
			r.Delete("/phrases/{id}", s.handleDeletePhrase)

			r.Post("/sessions", s.handleStartSession)
			r.Get("/sessions/current", s.handleCurrentSession)
			r.Get("/sessions/current/next", s.handleNextItem)
			r.Post("/sessions/current/grades", s.handleSubmitGrade)
			r.Post("/sessions/current/skip", s.handleSkipItem)
			r.Post("/sessions/current/narrative", s.handleBeginNarrative)
			r.Post("/sessions/current/bulk-grade", s.handleBulkGrade)
			r.Post("/sessions/current/complete", s.handleCompleteSession)

			r.Get("/stats", s.handleStats)
			r.Post("/speech", s.handleSpeech)
		})
	})

	return r
}
