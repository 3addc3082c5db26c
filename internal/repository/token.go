package repository

import (
	"context"
	"time"

	"docshare/internal/model"
)

// TokenRepository defines data access for single-use auth tokens.
type TokenRepository interface {
	// Create inserts a new token row.
	Create(ctx context.Context, t *model.AuthToken) (*model.AuthToken, error)

	// Consume atomically claims the token matching value+purpose in a single
	// UPDATE guarded by consumed_at IS NULL, and returns the claimed row.
	// Returns sql.ErrNoRows when no unconsumed token matches — wrong value,
	// wrong purpose, and already-consumed are indistinguishable on purpose.
	// Expiry is NOT checked here; callers compare ExpiresAt themselves so an
	// expired claim can be reported as EXPIRED rather than INVALID.
	Consume(ctx context.Context, token, purpose string, now time.Time) (*model.AuthToken, error)

	// InvalidateForUser consumes every outstanding token of the purpose for
	// the user, closing the window for replays with older tokens.
	InvalidateForUser(ctx context.Context, userID, purpose string, now time.Time) error
}
