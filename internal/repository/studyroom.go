package repository

import (
	"context"
)

// StudyRoomRepository answers bookshop/study-room entitlement questions.
type StudyRoomRepository interface {
	// MemberHasDocument reports whether the user's study room contains a
	// published bookshop item wrapping the document.
	MemberHasDocument(ctx context.Context, userID, documentID string) (bool, error)

	// ResolveItemDocumentID maps a study-room item id to the underlying
	// document id. Returns sql.ErrNoRows when the item does not exist.
	ResolveItemDocumentID(ctx context.Context, itemID string) (string, error)
}
