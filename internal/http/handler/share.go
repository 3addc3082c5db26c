package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docshare/internal/auth"
	"docshare/internal/http/middleware"
	"docshare/internal/ratelimit"
	"docshare/internal/service"
)

type createShareLinkRequest struct {
	DocumentID      string     `json:"document_id"`
	Password        *string    `json:"password"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MaxViews        *int       `json:"max_views"`
	RestrictToEmail *string    `json:"restrict_to_email"`
	CanDownload     bool       `json:"can_download"`
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

type trackRequest struct {
	DurationSeconds *int `json:"duration_seconds"`
}

// CreateShareLink creates a keyed share link for a viewable document.
func CreateShareLink(links service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createShareLinkRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if _, err := uuid.Parse(req.DocumentID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}

		link, err := links.Create(c.UserContext(), middleware.SessionFromCtx(c), service.CreateShareLinkInput{
			DocumentID:      req.DocumentID,
			Password:        req.Password,
			ExpiresAt:       req.ExpiresAt,
			MaxViews:        req.MaxViews,
			RestrictToEmail: req.RestrictToEmail,
			CanDownload:     req.CanDownload,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(link)
	}
}

// RevokeShareLink permanently deactivates a link (creator only).
func RevokeShareLink(links service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := middleware.SessionFromCtx(c)
		if session == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := links.Revoke(c.UserContext(), session.UserID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "revoked"})
	}
}

// ViewShare runs the share policy and returns the document with a short-TTL
// signed URL. The password capability, if any, rides on a per-share cookie
// and is verified server-side before it counts.
func ViewShare(links service.ShareLinkService, tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shareKey := c.Params("shareKey")

		hasCapability := false
		if raw := c.Cookies(auth.CapabilityCookieName(shareKey)); raw != "" {
			hasCapability = tokens.VerifyCapability(raw, shareKey) == nil
		}

		res, err := links.View(c.UserContext(), middleware.SessionFromCtx(c), shareKey, hasCapability, service.ShareViewContext{
			IP:        c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.JSON(fiber.Map{
			"document": fiber.Map{
				"id":       res.Document.ID,
				"title":    res.Document.Title,
				"filename": res.Document.Filename,
			},
			"signed_url":   res.SignedURL,
			"can_download": res.CanDownload,
			"view_count":   res.ViewCount,
		})
	}
}

// VerifySharePassword checks a submitted share password and, on success, sets
// the capability cookie. Attempts are rate limited per share key and client.
func VerifySharePassword(links service.ShareLinkService, limiter ratelimit.Store, secureCookies bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shareKey := c.Params("shareKey")

		if res := limiter.Check("verify-password:" + shareKey + ":" + c.IP()); !res.Allowed {
			return writeRateLimited(c, int(res.RetryAfter.Seconds()))
		}

		var req verifyPasswordRequest
		if err := c.BodyParser(&req); err != nil || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "password is required")
		}

		token, expiry, err := links.VerifyPassword(c.UserContext(), shareKey, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Cookie(&fiber.Cookie{
			Name:     auth.CapabilityCookieName(shareKey),
			Value:    token,
			Expires:  expiry,
			Path:     "/",
			HTTPOnly: true,
			Secure:   secureCookies,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// TrackShareView records an optional view duration. The endpoint always
// reports 201: analytics must never surface failures to viewers.
func TrackShareView(links service.ShareLinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shareKey := c.Params("shareKey")

		var req trackRequest
		_ = c.BodyParser(&req)

		viewerEmail := ""
		if session := middleware.SessionFromCtx(c); session != nil {
			viewerEmail = session.Email
		}

		if err := links.Track(c.UserContext(), shareKey, service.ShareViewContext{
			IP:        c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}, viewerEmail, req.DurationSeconds); err != nil {
			logWarn(c, "share_track_failed", err)
		}
		return c.SendStatus(fiber.StatusCreated)
	}
}
