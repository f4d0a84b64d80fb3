package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/srs"
)

// MockPhraseRepository is a mock implementation of repository.PhraseRepository
type MockPhraseRepository struct {
	mock.Mock
}

func (m *MockPhraseRepository) Get(ctx context.Context, id int64) (*models.Phrase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Phrase), args.Error(1)
}

func (m *MockPhraseRepository) List(ctx context.Context, filter models.PhraseFilter) ([]models.Phrase, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Phrase), args.Error(1)
}

func (m *MockPhraseRepository) Count(ctx context.Context, filter models.PhraseFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockPhraseRepository) Insert(ctx context.Context, phrase models.Phrase) (int64, error) {
	args := m.Called(ctx, phrase)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPhraseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPhraseRepository) DuePhrases(ctx context.Context, profileID int64, limit int) ([]models.Phrase, error) {
	args := m.Called(ctx, profileID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Phrase), args.Error(1)
}

func (m *MockPhraseRepository) CountDue(ctx context.Context, profileID int64) (int, error) {
	args := m.Called(ctx, profileID)
	return args.Int(0), args.Error(1)
}

func (m *MockPhraseRepository) UpdateSchedule(ctx context.Context, id int64, state srs.State) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}
