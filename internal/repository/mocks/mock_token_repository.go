package mocks

import (
	"context"
	"time"

	"docshare/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, t *model.AuthToken) (*model.AuthToken, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthToken), args.Error(1)
}

func (m *MockTokenRepository) Consume(ctx context.Context, token, purpose string, now time.Time) (*model.AuthToken, error) {
	args := m.Called(ctx, token, purpose, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthToken), args.Error(1)
}

func (m *MockTokenRepository) InvalidateForUser(ctx context.Context, userID, purpose string, now time.Time) error {
	args := m.Called(ctx, userID, purpose, now)
	return args.Error(0)
}
