package mocks

import (
	"context"

	"docshare/internal/auth"
	"docshare/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) CanViewDocument(ctx context.Context, session *auth.SessionClaims, documentID string) (*service.ViewDecision, error) {
	args := m.Called(ctx, session, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ViewDecision), args.Error(1)
}

func (m *MockAccessService) ResolveViewerID(ctx context.Context, rawID string) (string, string, error) {
	args := m.Called(ctx, rawID)
	return args.String(0), args.String(1), args.Error(2)
}
