package model

import "time"

// Document represents a stored file in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	PageCount   int       `json:"page_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentPage is one rendered page of a document. Pages are produced by an
// external conversion pipeline and are read-only to this service.
type DocumentPage struct {
	DocumentID  string `json:"document_id"`
	PageNumber  int    `json:"page_number"`
	StoragePath string `json:"storage_path"`
	Format      string `json:"format"`
	Size        int64  `json:"size"`
}
