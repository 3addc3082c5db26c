package mocks

import (
	"context"

	"docshare/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Insert(ctx context.Context, ev *model.ViewEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
