package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/andrev/phraseflash/internal/models"
)

// MockReviewRepository is a mock implementation of repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Insert(ctx context.Context, review models.Review) (int64, error) {
	args := m.Called(ctx, review)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) ForPhrase(ctx context.Context, phraseID int64) ([]models.Review, error) {
	args := m.Called(ctx, phraseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}
