package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docshare/internal/auth"
	"docshare/internal/mailer"
	"docshare/internal/model"
	"docshare/internal/repository"
)

// Inbox pagination bounds.
const (
	InboxDefaultLimit = 50
	InboxMaxLimit     = 100
)

// CreateEmailShareInput carries the fields for a new direct share.
type CreateEmailShareInput struct {
	DocumentID     string
	RecipientEmail string
	ExpiresAt      *time.Time
	CanDownload    bool
	Note           string
}

// InboxPage is one page of a recipient's inbox.
type InboxPage struct {
	Items   []model.InboxItem `json:"items"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	HasMore bool              `json:"has_more"`
}

// EmailShareService defines the use cases around direct (email) shares.
type EmailShareService interface {
	// Create shares a document with a recipient email. When the recipient
	// already has an account the share binds to their user id; otherwise it
	// binds to the bare email and surfaces after they register. The
	// notification email is decoupled from the result.
	Create(ctx context.Context, sharer *auth.SessionClaims, in CreateEmailShareInput) (*model.DocumentShare, error)

	// Revoke hard-deletes a share. Only the original sharer may revoke.
	Revoke(ctx context.Context, userID, shareID string) error

	// Inbox lists non-expired shares addressed to the session's user id or
	// email, newest first.
	Inbox(ctx context.Context, session *auth.SessionClaims, page, limit int) (*InboxPage, error)
}

type emailShareService struct {
	shares    repository.DocumentShareRepository
	users     repository.UserRepository
	documents repository.DocumentRepository
	access    AccessService
	mail      mailer.Mailer
}

// NewEmailShareService constructs an EmailShareService.
func NewEmailShareService(
	shares repository.DocumentShareRepository,
	users repository.UserRepository,
	documents repository.DocumentRepository,
	access AccessService,
	mail mailer.Mailer,
) EmailShareService {
	return &emailShareService{
		shares:    shares,
		users:     users,
		documents: documents,
		access:    access,
		mail:      mail,
	}
}

func (s *emailShareService) Create(ctx context.Context, sharer *auth.SessionClaims, in CreateEmailShareInput) (*model.DocumentShare, error) {
	if sharer == nil {
		return nil, ErrUnauthorized
	}

	recipient := strings.ToLower(strings.TrimSpace(in.RecipientEmail))
	if recipient == "" || !strings.Contains(recipient, "@") {
		return nil, fmt.Errorf("%w: recipient email is invalid", ErrValidation)
	}
	if recipient == strings.ToLower(sharer.Email) {
		return nil, fmt.Errorf("%w: cannot share a document with yourself", ErrValidation)
	}

	decision, err := s.access.CanViewDocument(ctx, sharer, in.DocumentID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		if decision.Reason == ReasonDocumentNotFound {
			return nil, ErrNotFound
		}
		return nil, ErrForbidden
	}

	// Bind to the registered account when one exists for the email.
	var recipientUserID *string
	var recipientEmail *string
	recipientUser, err := s.users.FindByEmail(ctx, recipient)
	switch {
	case err == nil:
		recipientUserID = &recipientUser.ID
	case errors.Is(err, sql.ErrNoRows):
		recipientEmail = &recipient
	default:
		return nil, err
	}

	now := time.Now().UTC()
	uid := ""
	if recipientUserID != nil {
		uid = *recipientUserID
	}
	exists, err := s.shares.ExistsActive(ctx, in.DocumentID, sharer.UserID, uid, recipient, now)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: document is already shared with this recipient", ErrValidation)
	}

	share := &model.DocumentShare{
		ID:               uuid.New().String(),
		DocumentID:       in.DocumentID,
		SharedByUserID:   sharer.UserID,
		SharedWithUserID: recipientUserID,
		SharedWithEmail:  recipientEmail,
		ExpiresAt:        in.ExpiresAt,
		CanDownload:      in.CanDownload,
		Note:             in.Note,
		CreatedAt:        now,
	}
	created, err := s.shares.Create(ctx, share)
	if err != nil {
		return nil, err
	}

	// Notification delivery is decoupled from the success response: a mail
	// failure is logged and never fails the share creation.
	title := decision.Document.Title
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.mail.SendShareNotification(sendCtx, recipient, sharer.Email, title, in.Note); err != nil {
			logWarn("share_notification_failed", map[string]any{
				"share_id":  created.ID,
				"recipient": recipient,
				"error":     err.Error(),
			})
		}
	}()

	return created, nil
}

func (s *emailShareService) Revoke(ctx context.Context, userID, shareID string) error {
	share, err := s.shares.FindByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if share.SharedByUserID != userID {
		return ErrForbidden
	}
	return s.shares.Delete(ctx, shareID)
}

func (s *emailShareService) Inbox(ctx context.Context, session *auth.SessionClaims, page, limit int) (*InboxPage, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = InboxDefaultLimit
	}
	if limit > InboxMaxLimit {
		limit = InboxMaxLimit
	}
	offset := (page - 1) * limit

	res, err := s.shares.ListInbox(ctx, session.UserID, strings.ToLower(session.Email), time.Now().UTC(), repository.PageQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	return &InboxPage{
		Items:   res.Items,
		Total:   res.Total,
		Page:    page,
		Limit:   limit,
		HasMore: offset+len(res.Items) < res.Total,
	}, nil
}
