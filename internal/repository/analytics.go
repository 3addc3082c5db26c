package repository

import (
	"context"

	"docshare/internal/model"
)

// AnalyticsRepository records view events. Append-only: no update or delete
// operations are exposed.
type AnalyticsRepository interface {
	Insert(ctx context.Context, ev *model.ViewEvent) error
}
