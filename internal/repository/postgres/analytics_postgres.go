package postgres

import (
	"context"
	"database/sql"

	"docshare/internal/model"
	"docshare/internal/repository"
)

// AnalyticsPostgres is a PostgreSQL implementation of repository.AnalyticsRepository.
type AnalyticsPostgres struct {
	db *sql.DB
}

// NewAnalyticsPostgres creates a new AnalyticsPostgres repository.
func NewAnalyticsPostgres(db *sql.DB) *AnalyticsPostgres {
	return &AnalyticsPostgres{db: db}
}

var _ repository.AnalyticsRepository = (*AnalyticsPostgres)(nil)

// Insert appends a view event row.
func (r *AnalyticsPostgres) Insert(ctx context.Context, ev *model.ViewEvent) error {
	const q = `
		INSERT INTO view_analytics (id, document_id, share_key, viewer_email, ip, user_agent, country, city, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, q,
		ev.ID,
		ev.DocumentID,
		ev.ShareKey,
		ev.ViewerEmail,
		ev.IP,
		ev.UserAgent,
		ev.Country,
		ev.City,
		ev.DurationSeconds,
		ev.CreatedAt,
	)
	return err
}
