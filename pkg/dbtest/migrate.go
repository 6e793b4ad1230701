package dbtest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"geo_feedback/pkg/contextx"
)

// MigrateFromFile runs each SQL file against db in the given order.
// A file is executed as a single multi-statement script, so its statements
// should be idempotent (CREATE ... IF NOT EXISTS).
func MigrateFromFile(ctx context.Context, db *sqlx.DB, fileNames ...string) error {
	for _, fileName := range fileNames {
		script, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("os.ReadFile: %w", err)
		}

		if _, err = db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("db.ExecContext(%s): %w", filepath.Base(fileName), err)
		}

		contextx.LoggerFromContextOrDefault(ctx).Debug("migration applied", slog.String("file", fileName))
	}

	return nil
}
