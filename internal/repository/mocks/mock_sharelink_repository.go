package mocks

import (
	"context"

	"docshare/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockShareLinkRepository struct {
	mock.Mock
}

func (m *MockShareLinkRepository) Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *MockShareLinkRepository) FindByKey(ctx context.Context, shareKey string) (*model.ShareLink, error) {
	args := m.Called(ctx, shareKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *MockShareLinkRepository) FindByID(ctx context.Context, id string) (*model.ShareLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *MockShareLinkRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockShareLinkRepository) IncrementViewCount(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
