package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendShareNotification(ctx context.Context, to, sharerEmail, documentTitle, note string) error {
	args := m.Called(ctx, to, sharerEmail, documentTitle, note)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	args := m.Called(ctx, to, resetURL)
	return args.Error(0)
}
