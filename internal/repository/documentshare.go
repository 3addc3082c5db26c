package repository

import (
	"context"
	"time"

	"docshare/internal/model"
)

// DocumentShareRepository defines data access for direct (email) shares.
type DocumentShareRepository interface {
	// Create inserts a new share row and returns the stored record.
	Create(ctx context.Context, share *model.DocumentShare) (*model.DocumentShare, error)

	// FindByID returns a share by id.
	FindByID(ctx context.Context, id string) (*model.DocumentShare, error)

	// ExistsActive reports whether a non-expired share of the given document
	// by the given sharer to the given recipient identity already exists.
	// Either recipientUserID or recipientEmail may be empty.
	ExistsActive(ctx context.Context, documentID, sharedByUserID, recipientUserID, recipientEmail string, now time.Time) (bool, error)

	// Delete hard-deletes a share row; revocation must remove the item from
	// the recipient's inbox on next fetch.
	Delete(ctx context.Context, id string) error

	// ListInbox returns non-expired shares addressed to the user id or email,
	// newest first, with the filtered total.
	ListInbox(ctx context.Context, userID, email string, now time.Time, pq PageQuery) (*PageResult[model.InboxItem], error)
}
