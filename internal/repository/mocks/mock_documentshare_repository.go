package mocks

import (
	"context"
	"time"

	"docshare/internal/model"
	"docshare/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentShareRepository struct {
	mock.Mock
}

func (m *MockDocumentShareRepository) Create(ctx context.Context, share *model.DocumentShare) (*model.DocumentShare, error) {
	args := m.Called(ctx, share)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentShare), args.Error(1)
}

func (m *MockDocumentShareRepository) FindByID(ctx context.Context, id string) (*model.DocumentShare, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentShare), args.Error(1)
}

func (m *MockDocumentShareRepository) ExistsActive(ctx context.Context, documentID, sharedByUserID, recipientUserID, recipientEmail string, now time.Time) (bool, error) {
	args := m.Called(ctx, documentID, sharedByUserID, recipientUserID, recipientEmail, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentShareRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentShareRepository) ListInbox(ctx context.Context, userID, email string, now time.Time, pq repository.PageQuery) (*repository.PageResult[model.InboxItem], error) {
	args := m.Called(ctx, userID, email, now, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.InboxItem]), args.Error(1)
}
