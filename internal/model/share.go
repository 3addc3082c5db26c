package model

import "time"

// ShareLink is a keyed, policy-gated link to a document. The share key is an
// unguessable URL token; access policy is evaluated over the remaining
// fields. ViewCount only ever increases.
type ShareLink struct {
	ID              string     `json:"id"`
	ShareKey        string     `json:"share_key"`
	DocumentID      string     `json:"document_id"`
	UserID          string     `json:"user_id"`
	PasswordHash    *string    `json:"-"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	MaxViews        *int       `json:"max_views,omitempty"`
	RestrictToEmail *string    `json:"restrict_to_email,omitempty"`
	CanDownload     bool       `json:"can_download"`
	IsActive        bool       `json:"is_active"`
	ViewCount       int        `json:"view_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HasPassword reports whether the link is password protected.
func (l *ShareLink) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// DocumentShare is a direct share to a specific recipient. Exactly one of
// SharedWithUserID / SharedWithEmail is set at creation: the user id when the
// recipient is already registered, the bare email otherwise. Revocation is a
// hard delete of the row.
type DocumentShare struct {
	ID               string     `json:"id"`
	DocumentID       string     `json:"document_id"`
	SharedByUserID   string     `json:"shared_by_user_id"`
	SharedWithUserID *string    `json:"shared_with_user_id,omitempty"`
	SharedWithEmail  *string    `json:"shared_with_email,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CanDownload      bool       `json:"can_download"`
	Note             string     `json:"note,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// InboxItem is a DocumentShare joined with the shared document's display
// fields for inbox listings.
type InboxItem struct {
	Share    DocumentShare `json:"share"`
	Document Document      `json:"document"`
}

// BookshopItem wraps a document offered in the bookshop. Only published
// items can be added to a member's study room.
type BookshopItem struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	PriceCents  int       `json:"price_cents"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudyRoomItem records that a member added a bookshop item to their study
// room, which grants them view access to the wrapped document.
type StudyRoomItem struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	BookshopItemID string    `json:"bookshop_item_id"`
	AddedAt        time.Time `json:"added_at"`
}
