package postgres

import (
	"context"
	"database/sql"

	"docshare/internal/model"
	"docshare/internal/repository"
)

// ShareLinkPostgres is a PostgreSQL implementation of repository.ShareLinkRepository.
type ShareLinkPostgres struct {
	db *sql.DB
}

// NewShareLinkPostgres creates a new ShareLinkPostgres repository.
func NewShareLinkPostgres(db *sql.DB) *ShareLinkPostgres {
	return &ShareLinkPostgres{db: db}
}

var _ repository.ShareLinkRepository = (*ShareLinkPostgres)(nil)

const shareLinkColumns = `id, share_key, document_id, user_id, password_hash, expires_at, max_views, restrict_to_email, can_download, is_active, view_count, created_at`

func scanShareLink(row interface{ Scan(...any) error }) (*model.ShareLink, error) {
	var l model.ShareLink
	if err := row.Scan(
		&l.ID,
		&l.ShareKey,
		&l.DocumentID,
		&l.UserID,
		&l.PasswordHash,
		&l.ExpiresAt,
		&l.MaxViews,
		&l.RestrictToEmail,
		&l.CanDownload,
		&l.IsActive,
		&l.ViewCount,
		&l.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new share link row and returns the stored record.
func (r *ShareLinkPostgres) Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error) {
	const q = `
		INSERT INTO share_links (id, share_key, document_id, user_id, password_hash, expires_at, max_views, restrict_to_email, can_download, is_active, view_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + shareLinkColumns
	row := r.db.QueryRowContext(ctx, q,
		link.ID,
		link.ShareKey,
		link.DocumentID,
		link.UserID,
		link.PasswordHash,
		link.ExpiresAt,
		link.MaxViews,
		link.RestrictToEmail,
		link.CanDownload,
		link.IsActive,
		link.ViewCount,
		link.CreatedAt,
	)
	return scanShareLink(row)
}

// FindByKey fetches a share link by its share key.
func (r *ShareLinkPostgres) FindByKey(ctx context.Context, shareKey string) (*model.ShareLink, error) {
	const q = `SELECT ` + shareLinkColumns + ` FROM share_links WHERE share_key = $1`
	return scanShareLink(r.db.QueryRowContext(ctx, q, shareKey))
}

// FindByID fetches a share link by id.
func (r *ShareLinkPostgres) FindByID(ctx context.Context, id string) (*model.ShareLink, error) {
	const q = `SELECT ` + shareLinkColumns + ` FROM share_links WHERE id = $1`
	return scanShareLink(r.db.QueryRowContext(ctx, q, id))
}

// Deactivate sets is_active=false for the link.
func (r *ShareLinkPostgres) Deactivate(ctx context.Context, id string) error {
	const q = `UPDATE share_links SET is_active = false WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViewCount bumps view_count by one in a single UPDATE and returns
// the new value. The database-side increment avoids lost updates under
// concurrent viewers.
func (r *ShareLinkPostgres) IncrementViewCount(ctx context.Context, id string) (int, error) {
	const q = `UPDATE share_links SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`
	var count int
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
