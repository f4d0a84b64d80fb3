// Package content defines the pluggable generation capabilities used around a
// study session. Every provider is optional; a nil provider or an
// ErrUnavailable result means the corresponding session phase is skipped.
package content

import (
	"context"
	"errors"

	"github.com/andrev/phraseflash/internal/models"
)

// ErrUnavailable signals that a provider cannot serve requests right now
// (missing credentials, disabled feature). Callers degrade instead of failing.
var ErrUnavailable = errors.New("content provider unavailable")

// StoryGenerator produces a short narrative weaving the given phrases together.
type StoryGenerator interface {
	GenerateNarrative(ctx context.Context, phrases []models.Phrase, lang models.LanguageContext) (*models.Narrative, error)
}

// ClozeGenerator produces fill-in-the-blank drill exercises for the given phrases.
type ClozeGenerator interface {
	GenerateDrills(ctx context.Context, phrases []models.Phrase, lang models.LanguageContext, count int) ([]models.DrillExercise, error)
}

// SpeechSynthesizer renders phrase audio for listening practice.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, lang models.LanguageContext) ([]byte, error)
}
