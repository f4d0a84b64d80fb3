package repository

import (
	"context"

	"github.com/andrev/phraseflash/internal/models"
)

// StatsRepository handles study statistics data access
type StatsRepository interface {
	StudyStats(ctx context.Context, profileID int64) (*models.StudyStat, error)
	DailyStats(ctx context.Context, profileID int64, days int) ([]models.DailyStat, error)
	GradeDistribution(ctx context.Context, profileID int64) (map[int]int, error)
}
