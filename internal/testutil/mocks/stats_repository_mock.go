package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/andrev/phraseflash/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) StudyStats(ctx context.Context, profileID int64) (*models.StudyStat, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyStat), args.Error(1)
}

func (m *MockStatsRepository) DailyStats(ctx context.Context, profileID int64, days int) ([]models.DailyStat, error) {
	args := m.Called(ctx, profileID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyStat), args.Error(1)
}

func (m *MockStatsRepository) GradeDistribution(ctx context.Context, profileID int64) (map[int]int, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}
