package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docshare/internal/http/middleware"
	"docshare/internal/service"
)

// HealthCheck reports DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments lists the authenticated user's documents with limit & offset.
func ListDocuments(documents service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := middleware.SessionFromCtx(c)
		if session == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		}

		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := documents.List(c.UserContext(), session.UserID, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument handles multipart upload (field name: file, optional title).
func UploadDocument(documents service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := middleware.SessionFromCtx(c)
		if session == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := documents.Upload(c.UserContext(), session.UserID, c.FormValue("title"), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns document metadata after the full authorization check.
func GetDocument(access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		decision, err := access.CanViewDocument(c.UserContext(), middleware.SessionFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !decision.Allowed {
			return writeViewDenial(c, decision.Reason)
		}
		return c.JSON(decision.Document)
	}
}

// DocumentURL issues a fresh dashboard signed URL. The id may be a document
// id or a study room item id; it is resolved before authorization.
func DocumentURL(access service.AccessService, documents service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		docID, _, err := access.ResolveViewerID(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		decision, err := access.CanViewDocument(c.UserContext(), middleware.SessionFromCtx(c), docID)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !decision.Allowed {
			return writeViewDenial(c, decision.Reason)
		}

		url, err := documents.DashboardURL(c.UserContext(), decision.Document)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// DeleteDocument removes an owned document from storage and the database.
func DeleteDocument(documents service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := middleware.SessionFromCtx(c)
		if session == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := documents.Delete(c.UserContext(), session.UserID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// writeViewDenial maps a ViewDecision reason to its HTTP status.
func writeViewDenial(c *fiber.Ctx, reason string) error {
	switch reason {
	case service.ReasonUnauthorized:
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case service.ReasonDocumentNotFound:
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	default:
		return writeError(c, fiber.StatusForbidden, "ACCESS_DENIED", "access denied")
	}
}
