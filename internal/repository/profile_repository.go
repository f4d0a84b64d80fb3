package repository

import (
	"context"

	"github.com/andrev/phraseflash/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) (*models.Profile, error)
	Delete(ctx context.Context, id int64) error
}
