// Package migration creates the persons schema used by the postgres record store.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is checked before running steps; its presence means the schema is current.
const sentinelTable = "public.persons"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_persons",
		SQL: `CREATE TABLE IF NOT EXISTS persons (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name              TEXT        NOT NULL,
  image             TEXT        NOT NULL,
  face_id           TEXT        NOT NULL,
  external_image_id TEXT        NOT NULL DEFAULT '',
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_persons_face_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_persons_face_id ON persons (face_id);`,
	},
	{
		Name: "create_index_persons_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_persons_name ON persons (name);`,
	},
}

// EnsureMigrated runs every step unless the persons table already exists.
// Records are never updated, so there is no versioning beyond the sentinel check.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "database", "db_host", dbHost)
	start := time.Now()

	log.InfoContext(ctx, "db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		log.ErrorContext(ctx, "db_migration_failed", "status", "error",
			"error_message", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.InfoContext(ctx, "db_migration_skip", "status", "success",
			"reason", "schema already exists", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	log.InfoContext(ctx, "db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed", "status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds())
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.DebugContext(ctx, "db_migration_step", "status", "success",
			"migration_step", step.Name, "step_duration_ms", time.Since(stepStart).Milliseconds())
	}

	log.InfoContext(ctx, "db_migration_success", "status", "success", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
