package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docshare/internal/auth"
	"docshare/internal/mailer"
	"docshare/internal/model"
	"docshare/internal/repository"
)

// AccountService defines registration, login, and the password reset flow.
type AccountService interface {
	// Register creates an account with the default PLATFORM_USER role.
	Register(ctx context.Context, email, password string) (*model.User, error)

	// Login verifies credentials and returns a signed session token.
	Login(ctx context.Context, email, password string) (string, *model.User, error)

	// RequestPasswordReset issues a reset token and mails it. It succeeds
	// silently for unknown emails so the endpoint cannot be used to probe
	// which addresses have accounts.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and updates the password. All
	// remaining reset tokens for the user are invalidated afterwards; if
	// that cleanup fails the reset still reports success (the password did
	// change) and the inconsistency is logged.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type accountService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	mail   mailer.Mailer
	jwt    *auth.TokenManager

	resetTokenTTL time.Duration
	appBaseURL    string
}

// NewAccountService constructs an AccountService.
func NewAccountService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	mail mailer.Mailer,
	jwt *auth.TokenManager,
	resetTokenTTL time.Duration,
	appBaseURL string,
) AccountService {
	return &accountService{
		users:         users,
		tokens:        tokens,
		mail:          mail,
		jwt:           jwt,
		resetTokenTTL: resetTokenTTL,
		appBaseURL:    appBaseURL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email is already registered", ErrValidation)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RolePlatformUser,
		CreatedAt:    time.Now().UTC(),
	})
}

func (s *accountService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrUnauthorized
		}
		return "", nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, ErrUnauthorized
	}

	token, err := s.jwt.IssueSession(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}
	return token, user, nil
}

func (s *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No account: report success without issuing anything.
			return nil
		}
		return err
	}

	value, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	now := time.Now().UTC()
	if _, err := s.tokens.Create(ctx, &model.AuthToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Purpose:   model.TokenPurposePasswordReset,
		Token:     value,
		ExpiresAt: now.Add(s.resetTokenTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	resetURL := s.appBaseURL + "/reset-password?token=" + value
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.mail.SendPasswordReset(sendCtx, email, resetURL); err != nil {
			logWarn("password_reset_mail_failed", map[string]any{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}()

	return nil
}

func (s *accountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	now := time.Now().UTC()
	claimed, err := s.tokens.Consume(ctx, token, model.TokenPurposePasswordReset, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenInvalid
		}
		return err
	}
	if now.After(claimed.ExpiresAt) {
		return ErrTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, claimed.UserID, hash); err != nil {
		return err
	}

	// Close the window for a second reset with an older, still-valid token.
	// The password already changed, so a cleanup failure is logged for
	// operator follow-up rather than surfaced as a reset failure.
	if err := s.tokens.InvalidateForUser(ctx, claimed.UserID, model.TokenPurposePasswordReset, now); err != nil {
		logWarn("reset_token_invalidation_failed", map[string]any{
			"user_id": claimed.UserID,
			"error":   err.Error(),
		})
	}

	return nil
}
