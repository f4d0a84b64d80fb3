package repository

import (
	"context"

	"github.com/andrev/phraseflash/internal/models"
)

// SessionRepository handles study session persistence
type SessionRepository interface {
	Insert(ctx context.Context, session models.Session) error
	Update(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	ListRecent(ctx context.Context, profileID int64, limit int) ([]models.Session, error)
}
