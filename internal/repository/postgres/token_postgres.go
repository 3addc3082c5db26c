package postgres

import (
	"context"
	"database/sql"
	"time"

	"docshare/internal/model"
	"docshare/internal/repository"
)

// TokenPostgres is a PostgreSQL implementation of repository.TokenRepository.
type TokenPostgres struct {
	db *sql.DB
}

// NewTokenPostgres creates a new TokenPostgres repository.
func NewTokenPostgres(db *sql.DB) *TokenPostgres {
	return &TokenPostgres{db: db}
}

var _ repository.TokenRepository = (*TokenPostgres)(nil)

const tokenColumns = `id, user_id, purpose, token, expires_at, consumed_at, created_at`

func scanToken(row interface{ Scan(...any) error }) (*model.AuthToken, error) {
	var t model.AuthToken
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Purpose,
		&t.Token,
		&t.ExpiresAt,
		&t.ConsumedAt,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new token row.
func (r *TokenPostgres) Create(ctx context.Context, t *model.AuthToken) (*model.AuthToken, error) {
	const q = `
		INSERT INTO auth_tokens (id, user_id, purpose, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + tokenColumns
	row := r.db.QueryRowContext(ctx, q,
		t.ID,
		t.UserID,
		t.Purpose,
		t.Token,
		t.ExpiresAt,
		t.CreatedAt,
	)
	return scanToken(row)
}

// Consume claims the token in one statement. The consumed_at IS NULL guard
// makes the claim atomic: two concurrent calls can never both succeed.
func (r *TokenPostgres) Consume(ctx context.Context, token, purpose string, now time.Time) (*model.AuthToken, error) {
	const q = `
		UPDATE auth_tokens
		SET consumed_at = $3
		WHERE token = $1 AND purpose = $2 AND consumed_at IS NULL
		RETURNING ` + tokenColumns
	return scanToken(r.db.QueryRowContext(ctx, q, token, purpose, now))
}

// InvalidateForUser consumes all outstanding tokens of the purpose for the user.
func (r *TokenPostgres) InvalidateForUser(ctx context.Context, userID, purpose string, now time.Time) error {
	const q = `
		UPDATE auth_tokens
		SET consumed_at = $3
		WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, q, userID, purpose, now)
	return err
}
