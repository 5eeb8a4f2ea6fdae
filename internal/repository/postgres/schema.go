package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"rentdesk-backend/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the vehicles, bookings and payments tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("EnsureSchema", "schema.sql")
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		logger.DatabaseResult("EnsureSchema", 0, err)
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.DatabaseResult("EnsureSchema", 0, nil)
	return nil
}
