package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of reminder.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, profileID int64, dueCount int) error {
	args := m.Called(ctx, profileID, dueCount)
	return args.Error(0)
}
