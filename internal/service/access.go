package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"docshare/internal/auth"
	"docshare/internal/model"
	"docshare/internal/repository"
)

// ShareAccess is the outcome of evaluating a share link's policy. Exactly one
// of the three states holds: allowed, password prompt, or a denial reason.
type ShareAccess struct {
	Allowed          bool
	RequiresPassword bool
	DeniedReason     string
}

// EvaluateShareAccess applies the share link policy. First match wins:
// inactive, expired, view limit, email restriction, then password. The
// password prompt comes last so a dead link never leaks that a password
// would otherwise have worked.
func EvaluateShareAccess(link *model.ShareLink, requesterEmail string, hasCapability bool, now time.Time) ShareAccess {
	if !link.IsActive {
		return ShareAccess{DeniedReason: DenyInactive}
	}
	if link.ExpiresAt != nil && now.After(*link.ExpiresAt) {
		return ShareAccess{DeniedReason: DenyExpired}
	}
	if link.MaxViews != nil && link.ViewCount >= *link.MaxViews {
		return ShareAccess{DeniedReason: DenyViewLimitExceeded}
	}
	if link.RestrictToEmail != nil && *link.RestrictToEmail != requesterEmail {
		return ShareAccess{DeniedReason: DenyEmailMismatch}
	}
	if link.HasPassword() && !hasCapability {
		return ShareAccess{RequiresPassword: true}
	}
	return ShareAccess{Allowed: true}
}

// ViewDecision is the outcome of a document-level authorization check. The
// Reason distinguishes "not found" from "denied" so the HTTP layer can map
// the right status.
type ViewDecision struct {
	Allowed  bool
	Reason   string
	Document *model.Document
}

// Reason strings for ViewDecision.
const (
	ReasonUnauthorized     = "Unauthorized"
	ReasonDocumentNotFound = "Document not found"
	ReasonAccessDenied     = "Access denied"
)

// AccessService answers document-level authorization questions.
type AccessService interface {
	// CanViewDocument decides whether the session may view the document.
	// Entitlements are unioned: ADMIN sees everything, a MEMBER sees
	// documents reachable through their study room, and an owner always
	// sees their own documents regardless of role.
	CanViewDocument(ctx context.Context, session *auth.SessionClaims, documentID string) (*ViewDecision, error)

	// ResolveViewerID maps a raw viewer id — either a document id or a
	// study-room item id — to the underlying document id.
	ResolveViewerID(ctx context.Context, rawID string) (documentID string, resolvedFrom string, err error)
}

type accessService struct {
	users     repository.UserRepository
	documents repository.DocumentRepository
	studyroom repository.StudyRoomRepository
}

// NewAccessService constructs an AccessService.
func NewAccessService(users repository.UserRepository, documents repository.DocumentRepository, studyroom repository.StudyRoomRepository) AccessService {
	return &accessService{users: users, documents: documents, studyroom: studyroom}
}

func (s *accessService) CanViewDocument(ctx context.Context, session *auth.SessionClaims, documentID string) (*ViewDecision, error) {
	if session == nil {
		return &ViewDecision{Reason: ReasonUnauthorized}, nil
	}

	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &ViewDecision{Reason: ReasonDocumentNotFound}, nil
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &ViewDecision{Reason: ReasonUnauthorized}, nil
		}
		return nil, err
	}

	if user.HasRole(model.RoleAdmin) {
		return &ViewDecision{Allowed: true, Document: doc}, nil
	}

	if user.HasRole(model.RoleMember) {
		has, err := s.studyroom.MemberHasDocument(ctx, user.ID, doc.ID)
		if err != nil {
			return nil, err
		}
		if has {
			return &ViewDecision{Allowed: true, Document: doc}, nil
		}
	}

	if doc.UserID == user.ID {
		return &ViewDecision{Allowed: true, Document: doc}, nil
	}

	return &ViewDecision{Reason: ReasonAccessDenied}, nil
}

// Resolution source tags returned by ResolveViewerID.
const (
	ResolvedFromDocument      = "document"
	ResolvedFromStudyRoomItem = "studyroom_item"
)

func (s *accessService) ResolveViewerID(ctx context.Context, rawID string) (string, string, error) {
	if _, err := s.documents.FindByID(ctx, rawID); err == nil {
		return rawID, ResolvedFromDocument, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", "", err
	}

	docID, err := s.studyroom.ResolveItemDocumentID(ctx, rawID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}
	return docID, ResolvedFromStudyRoomItem, nil
}
