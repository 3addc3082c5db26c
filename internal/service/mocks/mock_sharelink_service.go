package mocks

import (
	"context"
	"time"

	"docshare/internal/auth"
	"docshare/internal/model"
	"docshare/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockShareLinkService struct {
	mock.Mock
}

func (m *MockShareLinkService) Create(ctx context.Context, sharer *auth.SessionClaims, in service.CreateShareLinkInput) (*model.ShareLink, error) {
	args := m.Called(ctx, sharer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *MockShareLinkService) Revoke(ctx context.Context, userID, linkID string) error {
	args := m.Called(ctx, userID, linkID)
	return args.Error(0)
}

func (m *MockShareLinkService) View(ctx context.Context, session *auth.SessionClaims, shareKey string, hasCapability bool, vc service.ShareViewContext) (*service.ShareViewResult, error) {
	args := m.Called(ctx, session, shareKey, hasCapability, vc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShareViewResult), args.Error(1)
}

func (m *MockShareLinkService) VerifyPassword(ctx context.Context, shareKey, password string) (string, time.Time, error) {
	args := m.Called(ctx, shareKey, password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockShareLinkService) Track(ctx context.Context, shareKey string, vc service.ShareViewContext, viewerEmail string, durationSeconds *int) error {
	args := m.Called(ctx, shareKey, vc, viewerEmail, durationSeconds)
	return args.Error(0)
}
