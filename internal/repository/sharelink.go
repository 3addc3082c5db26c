package repository

import (
	"context"

	"docshare/internal/model"
)

// ShareLinkRepository defines data access for share links.
type ShareLinkRepository interface {
	// Create inserts a new share link row and returns the stored record.
	Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error)

	// FindByKey returns a share link by its share key.
	FindByKey(ctx context.Context, shareKey string) (*model.ShareLink, error)

	// FindByID returns a share link by id.
	FindByID(ctx context.Context, id string) (*model.ShareLink, error)

	// Deactivate sets is_active=false. Deactivation is permanent; there is
	// no reactivation path.
	Deactivate(ctx context.Context, id string) error

	// IncrementViewCount adds 1 to view_count as a single atomic UPDATE.
	// Read-modify-write is not acceptable here: concurrent viewers must not
	// lose increments.
	IncrementViewCount(ctx context.Context, id string) (int, error)
}
