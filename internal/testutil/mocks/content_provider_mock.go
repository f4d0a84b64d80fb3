package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/andrev/phraseflash/internal/models"
)

// MockStoryGenerator is a mock implementation of content.StoryGenerator
type MockStoryGenerator struct {
	mock.Mock
}

func (m *MockStoryGenerator) GenerateNarrative(ctx context.Context, phrases []models.Phrase, lang models.LanguageContext) (*models.Narrative, error) {
	args := m.Called(ctx, phrases, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Narrative), args.Error(1)
}

// MockClozeGenerator is a mock implementation of content.ClozeGenerator
type MockClozeGenerator struct {
	mock.Mock
}

func (m *MockClozeGenerator) GenerateDrills(ctx context.Context, phrases []models.Phrase, lang models.LanguageContext, count int) ([]models.DrillExercise, error) {
	args := m.Called(ctx, phrases, lang, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DrillExercise), args.Error(1)
}
