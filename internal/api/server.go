// Package api exposes the JSON HTTP surface consumed by the UI client.
package api

import (
	"database/sql"

	"github.com/andrev/phraseflash/internal/content"
	"github.com/andrev/phraseflash/internal/credentials"
	"github.com/andrev/phraseflash/internal/repository"
	"github.com/andrev/phraseflash/internal/session"
	"github.com/andrev/phraseflash/internal/worker"
)

type Server struct {
	DB          *sql.DB
	Sessions    *session.Manager
	Profiles    repository.ProfileRepository
	Phrases     repository.PhraseRepository
	Reviews     repository.ReviewRepository
	SessionRepo repository.SessionRepository
	Stats       repository.StatsRepository
	Credentials *credentials.Store
	Speech      content.SpeechSynthesizer
	ContentPool *worker.Pool
	DefaultLang string
	TargetLang  string
	MaxItems    int
}
