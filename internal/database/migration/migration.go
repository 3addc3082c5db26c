package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email               TEXT        NOT NULL UNIQUE,
  password_hash       TEXT        NOT NULL,
  role                TEXT        NOT NULL DEFAULT 'PLATFORM_USER',
  additional_roles    TEXT        NOT NULL DEFAULT '',
  free_document_count INT         NOT NULL DEFAULT 0,
  paid_document_count INT         NOT NULL DEFAULT 0,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id      UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title        TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  page_count   INT         NOT NULL DEFAULT 0,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_document_pages",
		SQL: `CREATE TABLE IF NOT EXISTS document_pages (
  document_id  UUID   NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
  page_number  INT    NOT NULL,
  storage_path TEXT   NOT NULL,
  format       TEXT   NOT NULL,
  size         BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (document_id, page_number)
);`,
	},
	{
		Name: "create_table_share_links",
		SQL: `CREATE TABLE IF NOT EXISTS share_links (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  share_key         TEXT        NOT NULL UNIQUE,
  document_id       UUID        NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
  user_id           UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  password_hash     TEXT,
  expires_at        TIMESTAMPTZ,
  max_views         INT,
  restrict_to_email TEXT,
  can_download      BOOLEAN     NOT NULL DEFAULT false,
  is_active         BOOLEAN     NOT NULL DEFAULT true,
  view_count        INT         NOT NULL DEFAULT 0 CHECK (view_count >= 0),
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_document_shares",
		SQL: `CREATE TABLE IF NOT EXISTS document_shares (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id         UUID        NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
  shared_by_user_id   UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  shared_with_user_id UUID        REFERENCES users(id) ON DELETE CASCADE,
  shared_with_email   TEXT,
  expires_at          TIMESTAMPTZ,
  can_download        BOOLEAN     NOT NULL DEFAULT false,
  note                TEXT        NOT NULL DEFAULT '',
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK (shared_with_user_id IS NOT NULL OR shared_with_email IS NOT NULL)
);`,
	},
	{
		Name: "create_table_view_analytics",
		SQL: `CREATE TABLE IF NOT EXISTS view_analytics (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id      UUID        NOT NULL,
  share_key        TEXT        NOT NULL DEFAULT '',
  viewer_email     TEXT        NOT NULL DEFAULT '',
  ip               TEXT        NOT NULL DEFAULT '',
  user_agent       TEXT        NOT NULL DEFAULT '',
  country          TEXT,
  city             TEXT,
  duration_seconds INT,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_auth_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS auth_tokens (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id     UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  purpose     TEXT        NOT NULL,
  token       TEXT        NOT NULL UNIQUE,
  expires_at  TIMESTAMPTZ NOT NULL,
  consumed_at TIMESTAMPTZ,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_bookshop_items",
		SQL: `CREATE TABLE IF NOT EXISTS bookshop_items (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id  UUID        NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
  title        TEXT        NOT NULL,
  price_cents  INT         NOT NULL DEFAULT 0,
  is_published BOOLEAN     NOT NULL DEFAULT false,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_studyroom_items",
		SQL: `CREATE TABLE IF NOT EXISTS studyroom_items (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id          UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  bookshop_item_id UUID        NOT NULL REFERENCES bookshop_items(id) ON DELETE CASCADE,
  added_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (user_id, bookshop_item_id)
);`,
	},
	{
		Name: "create_index_share_links_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_share_links_document_id ON share_links (document_id);`,
	},
	{
		Name: "create_index_document_shares_recipient",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_shares_recipient ON document_shares (shared_with_user_id, shared_with_email);`,
	},
	{
		Name: "create_index_document_shares_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_shares_created_at ON document_shares (created_at);`,
	},
	{
		Name: "create_index_view_analytics_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_view_analytics_document_id ON view_analytics (document_id);`,
	},
	{
		Name: "create_index_auth_tokens_user_purpose",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_auth_tokens_user_purpose ON auth_tokens (user_id, purpose);`,
	},
	{
		Name: "create_index_documents_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents (user_id);`,
	},
}

// EnsureMigrated checks if the 'users' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.users') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
