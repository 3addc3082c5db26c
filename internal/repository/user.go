package repository

import (
	"context"

	"docshare/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user row and returns the stored record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by id.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email. Lookup is exact-match; callers
	// normalize casing before calling.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
