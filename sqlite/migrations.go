package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const objectsSchema = `
CREATE TABLE IF NOT EXISTS objects (
	key TEXT PRIMARY KEY,
	size INTEGER NOT NULL,
	etag TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	blob_ref TEXT NOT NULL DEFAULT '',
	uploaded_at TEXT NOT NULL
)`

// The primary key index on key serves the ordered LIKE-prefix scans List
// relies on; no secondary index is needed.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, objectsSchema); err != nil {
		return fmt.Errorf("create objects table: %w", err)
	}
	return nil
}
