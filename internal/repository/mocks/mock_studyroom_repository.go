package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStudyRoomRepository struct {
	mock.Mock
}

func (m *MockStudyRoomRepository) MemberHasDocument(ctx context.Context, userID, documentID string) (bool, error) {
	args := m.Called(ctx, userID, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudyRoomRepository) ResolveItemDocumentID(ctx context.Context, itemID string) (string, error) {
	args := m.Called(ctx, itemID)
	return args.String(0), args.Error(1)
}
