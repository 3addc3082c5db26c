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
	"docshare/internal/model"
	"docshare/internal/repository"
	"docshare/internal/storage"
)

// CreateShareLinkInput carries the policy fields for a new share link.
type CreateShareLinkInput struct {
	DocumentID      string
	Password        *string
	ExpiresAt       *time.Time
	MaxViews        *int
	RestrictToEmail *string
	CanDownload     bool
}

// ShareViewContext carries request metadata recorded with a view.
type ShareViewContext struct {
	IP        string
	UserAgent string
}

// ShareViewResult is returned for a granted share view. The signed URL is
// freshly generated and must not be stored anywhere.
type ShareViewResult struct {
	Document    *model.Document
	SignedURL   string
	CanDownload bool
	ViewCount   int
}

// ShareLinkService defines the use cases around keyed share links.
type ShareLinkService interface {
	// Create generates a share link for a document the sharer may view.
	Create(ctx context.Context, sharer *auth.SessionClaims, in CreateShareLinkInput) (*model.ShareLink, error)

	// Revoke permanently deactivates a link. Only the creator may revoke.
	Revoke(ctx context.Context, userID, linkID string) error

	// View runs the full policy check for a share view. On a grant it
	// increments the view counter exactly once, issues a short-TTL signed
	// URL, and records a view event best-effort.
	View(ctx context.Context, session *auth.SessionClaims, shareKey string, hasCapability bool, vc ShareViewContext) (*ShareViewResult, error)

	// VerifyPassword checks a submitted share password and, on success,
	// returns a signed capability token with its expiry.
	VerifyPassword(ctx context.Context, shareKey, password string) (string, time.Time, error)

	// Track records an optional duration for an earlier view. Failures are
	// returned for logging but callers must not surface them.
	Track(ctx context.Context, shareKey string, vc ShareViewContext, viewerEmail string, durationSeconds *int) error
}

type shareLinkService struct {
	links     repository.ShareLinkRepository
	documents repository.DocumentRepository
	analytics repository.AnalyticsRepository
	access    AccessService
	store     storage.Storage
	tokens    *auth.TokenManager
}

// NewShareLinkService constructs a ShareLinkService.
func NewShareLinkService(
	links repository.ShareLinkRepository,
	documents repository.DocumentRepository,
	analytics repository.AnalyticsRepository,
	access AccessService,
	store storage.Storage,
	tokens *auth.TokenManager,
) ShareLinkService {
	return &shareLinkService{
		links:     links,
		documents: documents,
		analytics: analytics,
		access:    access,
		store:     store,
		tokens:    tokens,
	}
}

func (s *shareLinkService) Create(ctx context.Context, sharer *auth.SessionClaims, in CreateShareLinkInput) (*model.ShareLink, error) {
	if sharer == nil {
		return nil, ErrUnauthorized
	}

	// Sharing requires view rights on the document, not ownership.
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

	key, err := auth.NewShareKey()
	if err != nil {
		return nil, fmt.Errorf("generate share key: %w", err)
	}

	var passwordHash *string
	if in.Password != nil && *in.Password != "" {
		h, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
		passwordHash = &h
	}

	// Session emails are lowercased at registration, so the restriction has
	// to be normalized the same way or it could never match any requester.
	restrictTo := in.RestrictToEmail
	if restrictTo != nil {
		e := strings.ToLower(strings.TrimSpace(*restrictTo))
		restrictTo = &e
	}

	link := &model.ShareLink{
		ID:              uuid.New().String(),
		ShareKey:        key,
		DocumentID:      in.DocumentID,
		UserID:          sharer.UserID,
		PasswordHash:    passwordHash,
		ExpiresAt:       in.ExpiresAt,
		MaxViews:        in.MaxViews,
		RestrictToEmail: restrictTo,
		CanDownload:     in.CanDownload,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
	return s.links.Create(ctx, link)
}

func (s *shareLinkService) Revoke(ctx context.Context, userID, linkID string) error {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if link.UserID != userID {
		return ErrForbidden
	}
	return s.links.Deactivate(ctx, linkID)
}

func (s *shareLinkService) View(ctx context.Context, session *auth.SessionClaims, shareKey string, hasCapability bool, vc ShareViewContext) (*ShareViewResult, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}

	link, err := s.links.FindByKey(ctx, shareKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	access := EvaluateShareAccess(link, session.Email, hasCapability, time.Now().UTC())
	if access.DeniedReason != "" {
		return nil, &ShareDenialError{Reason: access.DeniedReason}
	}
	if access.RequiresPassword {
		return nil, ErrPasswordRequired
	}

	doc, err := s.documents.FindByID(ctx, link.DocumentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Increment before issuing the URL: a granted view counts against the
	// limit even if URL generation then fails.
	count, err := s.links.IncrementViewCount(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("increment view count: %w", err)
	}

	signedURL, err := s.store.PresignGet(ctx, doc.StoragePath, storage.ShareViewTTL)
	if err != nil {
		return nil, fmt.Errorf("presign share view: %w", err)
	}

	// Analytics must never block or fail viewing.
	ev := &model.ViewEvent{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		ShareKey:    link.ShareKey,
		ViewerEmail: session.Email,
		IP:          vc.IP,
		UserAgent:   vc.UserAgent,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.analytics.Insert(ctx, ev); err != nil {
		logWarn("view_analytics_insert_failed", map[string]any{
			"share_key": link.ShareKey,
			"error":     err.Error(),
		})
	}

	return &ShareViewResult{
		Document:    doc,
		SignedURL:   signedURL,
		CanDownload: link.CanDownload,
		ViewCount:   count,
	}, nil
}

func (s *shareLinkService) VerifyPassword(ctx context.Context, shareKey, password string) (string, time.Time, error) {
	link, err := s.links.FindByKey(ctx, shareKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, ErrNotFound
		}
		return "", time.Time{}, err
	}
	if !link.HasPassword() {
		return "", time.Time{}, ErrNoPasswordSet
	}
	if !auth.VerifyPassword(password, *link.PasswordHash) {
		return "", time.Time{}, ErrWrongPassword
	}
	return s.tokens.IssueCapability(shareKey)
}

func (s *shareLinkService) Track(ctx context.Context, shareKey string, vc ShareViewContext, viewerEmail string, durationSeconds *int) error {
	link, err := s.links.FindByKey(ctx, shareKey)
	if err != nil {
		return err
	}
	ev := &model.ViewEvent{
		ID:              uuid.New().String(),
		DocumentID:      link.DocumentID,
		ShareKey:        link.ShareKey,
		ViewerEmail:     viewerEmail,
		IP:              vc.IP,
		UserAgent:       vc.UserAgent,
		DurationSeconds: durationSeconds,
		CreatedAt:       time.Now().UTC(),
	}
	return s.analytics.Insert(ctx, ev)
}
