package postgres

import (
	"context"
	"database/sql"
	"time"

	"docshare/internal/model"
	"docshare/internal/repository"
)

// DocumentSharePostgres is a PostgreSQL implementation of repository.DocumentShareRepository.
type DocumentSharePostgres struct {
	db *sql.DB
}

// NewDocumentSharePostgres creates a new DocumentSharePostgres repository.
func NewDocumentSharePostgres(db *sql.DB) *DocumentSharePostgres {
	return &DocumentSharePostgres{db: db}
}

var _ repository.DocumentShareRepository = (*DocumentSharePostgres)(nil)

const documentShareColumns = `id, document_id, shared_by_user_id, shared_with_user_id, shared_with_email, expires_at, can_download, note, created_at`

func scanDocumentShare(row interface{ Scan(...any) error }) (*model.DocumentShare, error) {
	var s model.DocumentShare
	if err := row.Scan(
		&s.ID,
		&s.DocumentID,
		&s.SharedByUserID,
		&s.SharedWithUserID,
		&s.SharedWithEmail,
		&s.ExpiresAt,
		&s.CanDownload,
		&s.Note,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new share row and returns the stored record.
func (r *DocumentSharePostgres) Create(ctx context.Context, share *model.DocumentShare) (*model.DocumentShare, error) {
	const q = `
		INSERT INTO document_shares (id, document_id, shared_by_user_id, shared_with_user_id, shared_with_email, expires_at, can_download, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + documentShareColumns
	row := r.db.QueryRowContext(ctx, q,
		share.ID,
		share.DocumentID,
		share.SharedByUserID,
		share.SharedWithUserID,
		share.SharedWithEmail,
		share.ExpiresAt,
		share.CanDownload,
		share.Note,
		share.CreatedAt,
	)
	return scanDocumentShare(row)
}

// FindByID fetches a share by id.
func (r *DocumentSharePostgres) FindByID(ctx context.Context, id string) (*model.DocumentShare, error) {
	const q = `SELECT ` + documentShareColumns + ` FROM document_shares WHERE id = $1`
	return scanDocumentShare(r.db.QueryRowContext(ctx, q, id))
}

// ExistsActive reports whether a non-expired share already targets the same
// recipient identity for the same document and sharer. An unset recipient
// identity is passed as "" and neutralized with NULLIF; guarding the cast
// with a boolean instead is not safe, the planner may fold `''::uuid` for a
// known parameter before the guard is ever evaluated.
func (r *DocumentSharePostgres) ExistsActive(ctx context.Context, documentID, sharedByUserID, recipientUserID, recipientEmail string, now time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM document_shares
			WHERE document_id = $1
			  AND shared_by_user_id = $2
			  AND (
			        shared_with_user_id = NULLIF($3, '')::uuid
			     OR shared_with_email = NULLIF($4, '')
			  )
			  AND (expires_at IS NULL OR expires_at > $5)
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, documentID, sharedByUserID, recipientUserID, recipientEmail, now).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Delete hard-deletes the share row.
func (r *DocumentSharePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM document_shares WHERE id = $1`
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

// ListInbox returns non-expired shares addressed to the user id or the email,
// newest first. A share created before the recipient registered matches by
// email, so it still surfaces after registration.
func (r *DocumentSharePostgres) ListInbox(ctx context.Context, userID, email string, now time.Time, pq repository.PageQuery) (*repository.PageResult[model.InboxItem], error) {
	const qCount = `
		SELECT COUNT(*)
		FROM document_shares s
		JOIN documents d ON d.id = s.document_id
		WHERE (s.shared_with_user_id = $1::uuid OR s.shared_with_email = $2)
		  AND (s.expires_at IS NULL OR s.expires_at > $3)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID, email, now).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT s.id, s.document_id, s.shared_by_user_id, s.shared_with_user_id, s.shared_with_email, s.expires_at, s.can_download, s.note, s.created_at,
		       d.id, d.user_id, d.title, d.filename, d.storage_path, d.size, d.content_type, d.page_count, d.created_at
		FROM document_shares s
		JOIN documents d ON d.id = s.document_id
		WHERE (s.shared_with_user_id = $1::uuid OR s.shared_with_email = $2)
		  AND (s.expires_at IS NULL OR s.expires_at > $3)
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, email, now, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.InboxItem, 0)
	for rows.Next() {
		var it model.InboxItem
		if err := rows.Scan(
			&it.Share.ID,
			&it.Share.DocumentID,
			&it.Share.SharedByUserID,
			&it.Share.SharedWithUserID,
			&it.Share.SharedWithEmail,
			&it.Share.ExpiresAt,
			&it.Share.CanDownload,
			&it.Share.Note,
			&it.Share.CreatedAt,
			&it.Document.ID,
			&it.Document.UserID,
			&it.Document.Title,
			&it.Document.Filename,
			&it.Document.StoragePath,
			&it.Document.Size,
			&it.Document.ContentType,
			&it.Document.PageCount,
			&it.Document.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.InboxItem]{
		Items: items,
		Total: total,
	}, nil
}
