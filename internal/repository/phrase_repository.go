package repository

import (
	"context"

	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/srs"
)

// PhraseRepository handles phrase data access
type PhraseRepository interface {
	Get(ctx context.Context, id int64) (*models.Phrase, error)
	List(ctx context.Context, filter models.PhraseFilter) ([]models.Phrase, error)
	Count(ctx context.Context, filter models.PhraseFilter) (int, error)
	Insert(ctx context.Context, phrase models.Phrase) (int64, error)
	Delete(ctx context.Context, id int64) error

	// DuePhrases returns phrases whose next review time has passed, never
	// reviewed first, then ascending next_review_at with created_at as the
	// tiebreak. Callers must not re-sort the result.
	DuePhrases(ctx context.Context, profileID int64, limit int) ([]models.Phrase, error)
	CountDue(ctx context.Context, profileID int64) (int, error)
	UpdateSchedule(ctx context.Context, id int64, state srs.State) error
}
