package mocks

import (
	"context"

	"docshare/internal/auth"
	"docshare/internal/model"
	"docshare/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockEmailShareService struct {
	mock.Mock
}

func (m *MockEmailShareService) Create(ctx context.Context, sharer *auth.SessionClaims, in service.CreateEmailShareInput) (*model.DocumentShare, error) {
	args := m.Called(ctx, sharer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentShare), args.Error(1)
}

func (m *MockEmailShareService) Revoke(ctx context.Context, userID, shareID string) error {
	args := m.Called(ctx, userID, shareID)
	return args.Error(0)
}

func (m *MockEmailShareService) Inbox(ctx context.Context, session *auth.SessionClaims, page, limit int) (*service.InboxPage, error) {
	args := m.Called(ctx, session, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InboxPage), args.Error(1)
}
