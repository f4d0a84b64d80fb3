package repository

import (
	"context"

	"github.com/andrev/phraseflash/internal/models"
)

// ReviewRepository handles the append-only review history
type ReviewRepository interface {
	Insert(ctx context.Context, review models.Review) (int64, error)
	ForPhrase(ctx context.Context, phraseID int64) ([]models.Review, error)
}
