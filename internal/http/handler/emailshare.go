package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docshare/internal/http/middleware"
	"docshare/internal/service"
)

type createEmailShareRequest struct {
	DocumentID     string     `json:"document_id"`
	RecipientEmail string     `json:"recipient_email"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CanDownload    bool       `json:"can_download"`
	Note           string     `json:"note"`
}

// CreateEmailShare shares a document directly with a recipient email.
func CreateEmailShare(shares service.EmailShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createEmailShareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if _, err := uuid.Parse(req.DocumentID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}

		share, err := shares.Create(c.UserContext(), middleware.SessionFromCtx(c), service.CreateEmailShareInput{
			DocumentID:     req.DocumentID,
			RecipientEmail: req.RecipientEmail,
			ExpiresAt:      req.ExpiresAt,
			CanDownload:    req.CanDownload,
			Note:           req.Note,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(share)
	}
}

// RevokeEmailShare hard-deletes a direct share (sharer only).
func RevokeEmailShare(shares service.EmailShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := middleware.SessionFromCtx(c)
		if session == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := shares.Revoke(c.UserContext(), session.UserID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Inbox lists shares addressed to the authenticated user, newest first.
func Inbox(shares service.EmailShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		res, err := shares.Inbox(c.UserContext(), middleware.SessionFromCtx(c), page, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
