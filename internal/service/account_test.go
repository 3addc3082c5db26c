package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docshare/internal/auth"
	"docshare/internal/mailer"
	mailmocks "docshare/internal/mailer/mocks"
	"docshare/internal/model"
	repomocks "docshare/internal/repository/mocks"
)

const goodPassword = "Sup3r$ecret"

type accountFixture struct {
	users  *repomocks.MockUserRepository
	tokens *repomocks.MockTokenRepository
	jwt    *auth.TokenManager
}

func newAccountFixture() *accountFixture {
	return &accountFixture{
		users:  new(repomocks.MockUserRepository),
		tokens: new(repomocks.MockTokenRepository),
		jwt:    auth.NewTokenManager("test-secret", time.Hour, time.Hour),
	}
}

func (f *accountFixture) service(mail mailer.Mailer) AccountService {
	return NewAccountService(f.users, f.tokens, mail, f.jwt, 30*time.Minute, "https://app.example.com")
}

func TestAccountRegister(t *testing.T) {
	t.Run("creates a platform user with hashed password", func(t *testing.T) {
		f := newAccountFixture()
		f.users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, sql.ErrNoRows)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" &&
				u.Role == model.RolePlatformUser &&
				u.PasswordHash != goodPassword &&
				auth.VerifyPassword(goodPassword, u.PasswordHash)
		})).Return(&model.User{ID: "u-1", Email: "new@example.com", Role: model.RolePlatformUser}, nil)

		got, err := f.service(mailer.NewNoop()).Register(context.Background(), " New@Example.com ", goodPassword)
		require.NoError(t, err)
		assert.Equal(t, "u-1", got.ID)
		f.users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAccountFixture()
		f.users.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: "u-1"}, nil)
		_, err := f.service(mailer.NewNoop()).Register(context.Background(), "taken@example.com", goodPassword)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("weak password", func(t *testing.T) {
		f := newAccountFixture()
		_, err := f.service(mailer.NewNoop()).Register(context.Background(), "new@example.com", "short")
		assert.ErrorIs(t, err, ErrValidation)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newAccountFixture()
		_, err := f.service(mailer.NewNoop()).Register(context.Background(), "not-an-email", goodPassword)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestAccountLogin(t *testing.T) {
	hash, err := auth.HashPassword(goodPassword)
	require.NoError(t, err)
	user := &model.User{ID: "u-1", Email: "u1@example.com", PasswordHash: hash}

	t.Run("valid credentials yield a session token", func(t *testing.T) {
		f := newAccountFixture()
		f.users.On("FindByEmail", mock.Anything, "u1@example.com").Return(user, nil)

		token, got, err := f.service(mailer.NewNoop()).Login(context.Background(), "U1@Example.com", goodPassword)
		require.NoError(t, err)
		assert.Equal(t, user, got)

		claims, err := f.jwt.ParseSession(token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, "u1@example.com", claims.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAccountFixture()
		f.users.On("FindByEmail", mock.Anything, "u1@example.com").Return(user, nil)
		_, _, err := f.service(mailer.NewNoop()).Login(context.Background(), "u1@example.com", "nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email reports the same error as a wrong password", func(t *testing.T) {
		f := newAccountFixture()
		f.users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)
		_, _, err := f.service(mailer.NewNoop()).Login(context.Background(), "ghost@example.com", goodPassword)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAccountRequestPasswordReset(t *testing.T) {
	t.Run("issues a token and mails the reset link", func(t *testing.T) {
		f := newAccountFixture()
		f.users.On("FindByEmail", mock.Anything, "u1@example.com").Return(&model.User{ID: "u-1", Email: "u1@example.com"}, nil)

		var issued string
		f.tokens.On("Create", mock.Anything, mock.MatchedBy(func(tok *model.AuthToken) bool {
			issued = tok.Token
			return tok.UserID == "u-1" &&
				tok.Purpose == model.TokenPurposePasswordReset &&
				tok.Token != "" &&
				tok.ExpiresAt.After(time.Now())
		})).Return(&model.AuthToken{ID: "t-1"}, nil)

		mail := new(mailmocks.MockMailer)
		mailed := make(chan string, 1)
		mail.On("SendPasswordReset", mock.Anything, "u1@example.com", mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) { mailed <- args.String(2) })

		require.NoError(t, f.service(mail).RequestPasswordReset(context.Background(), "u1@example.com"))

		select {
		case url := <-mailed:
			assert.True(t, strings.HasPrefix(url, "https://app.example.com/reset-password?token="))
			assert.Contains(t, url, issued)
		case <-time.After(2 * time.Second):
			t.Fatal("reset mail was never sent")
		}
		f.tokens.AssertExpectations(t)
	})

	t.Run("unknown email succeeds without issuing anything", func(t *testing.T) {
		f := newAccountFixture()
		f.users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)

		mail := new(mailmocks.MockMailer)
		require.NoError(t, f.service(mail).RequestPasswordReset(context.Background(), "ghost@example.com"))
		f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mail.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccountResetPassword(t *testing.T) {
	claimed := func() *model.AuthToken {
		return &model.AuthToken{
			ID:        "t-1",
			UserID:    "u-1",
			Purpose:   model.TokenPurposePasswordReset,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}
	}

	t.Run("consumes the token, updates the hash, invalidates the rest", func(t *testing.T) {
		f := newAccountFixture()
		f.tokens.On("Consume", mock.Anything, "tok-value", model.TokenPurposePasswordReset, mock.Anything).Return(claimed(), nil)
		f.users.On("UpdatePassword", mock.Anything, "u-1", mock.MatchedBy(func(hash string) bool {
			return auth.VerifyPassword(goodPassword, hash)
		})).Return(nil)
		f.tokens.On("InvalidateForUser", mock.Anything, "u-1", model.TokenPurposePasswordReset, mock.Anything).Return(nil)

		require.NoError(t, f.service(mailer.NewNoop()).ResetPassword(context.Background(), "tok-value", goodPassword))
		f.tokens.AssertExpectations(t)
		f.users.AssertExpectations(t)
	})

	t.Run("already consumed or unknown token", func(t *testing.T) {
		f := newAccountFixture()
		f.tokens.On("Consume", mock.Anything, "spent", model.TokenPurposePasswordReset, mock.Anything).Return(nil, sql.ErrNoRows)
		err := f.service(mailer.NewNoop()).ResetPassword(context.Background(), "spent", goodPassword)
		assert.ErrorIs(t, err, ErrTokenInvalid)
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := claimed()
		expired.ExpiresAt = time.Now().Add(-time.Minute)

		f := newAccountFixture()
		f.tokens.On("Consume", mock.Anything, "old", model.TokenPurposePasswordReset, mock.Anything).Return(expired, nil)
		err := f.service(mailer.NewNoop()).ResetPassword(context.Background(), "old", goodPassword)
		assert.ErrorIs(t, err, ErrTokenExpired)
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("weak replacement password", func(t *testing.T) {
		f := newAccountFixture()
		err := f.service(mailer.NewNoop()).ResetPassword(context.Background(), "tok-value", "short")
		assert.ErrorIs(t, err, ErrValidation)
		f.tokens.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalidation failure still reports success", func(t *testing.T) {
		f := newAccountFixture()
		f.tokens.On("Consume", mock.Anything, "tok-value", model.TokenPurposePasswordReset, mock.Anything).Return(claimed(), nil)
		f.users.On("UpdatePassword", mock.Anything, "u-1", mock.Anything).Return(nil)
		f.tokens.On("InvalidateForUser", mock.Anything, "u-1", model.TokenPurposePasswordReset, mock.Anything).Return(errors.New("db down"))

		require.NoError(t, f.service(mailer.NewNoop()).ResetPassword(context.Background(), "tok-value", goodPassword))
	})
}
