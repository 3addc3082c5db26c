package postgres

import (
	"context"
	"database/sql"

	"docshare/internal/repository"
)

// StudyRoomPostgres is a PostgreSQL implementation of repository.StudyRoomRepository.
type StudyRoomPostgres struct {
	db *sql.DB
}

// NewStudyRoomPostgres creates a new StudyRoomPostgres repository.
func NewStudyRoomPostgres(db *sql.DB) *StudyRoomPostgres {
	return &StudyRoomPostgres{db: db}
}

var _ repository.StudyRoomRepository = (*StudyRoomPostgres)(nil)

// MemberHasDocument reports whether the user's study room contains a
// published bookshop item wrapping the document. Unpublished items do not
// grant access even when already added.
func (r *StudyRoomPostgres) MemberHasDocument(ctx context.Context, userID, documentID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM studyroom_items s
			JOIN bookshop_items b ON b.id = s.bookshop_item_id
			WHERE s.user_id = $1 AND b.document_id = $2 AND b.is_published
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, userID, documentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ResolveItemDocumentID maps a study-room item id to the wrapped document id.
func (r *StudyRoomPostgres) ResolveItemDocumentID(ctx context.Context, itemID string) (string, error) {
	const q = `
		SELECT b.document_id
		FROM studyroom_items s
		JOIN bookshop_items b ON b.id = s.bookshop_item_id
		WHERE s.id = $1
	`
	var documentID string
	if err := r.db.QueryRowContext(ctx, q, itemID).Scan(&documentID); err != nil {
		return "", err
	}
	return documentID, nil
}
