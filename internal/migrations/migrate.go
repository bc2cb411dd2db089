package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/pressly/goose/v3"

	schema "github.com/Simplici0/carcost/migrations"
)

// Up runs all pending SQL migrations found in migrationsDir. An empty migrationsDir uses
// the migrations embedded in the binary.
func Up(ctx context.Context, db *sql.DB, migrationsDir string) error {
	var fsys fs.FS = schema.FS
	if migrationsDir != "" {
		fsys = os.DirFS(migrationsDir)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}
