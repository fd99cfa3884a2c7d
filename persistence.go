package tutortime

import (
	"context"
	"database/sql"
	"io/fs"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDatabase opens the sqlite database behind the shim driver and wraps
// it in a bun handle.
func OpenDatabase(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "unable to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	db.RegisterModel((*User)(nil))
	db.RegisterModel((*Appointment)(nil))
	db.RegisterModel((*Message)(nil))

	return db, nil
}

// Migrate applies the embedded SQL migrations that have not run yet. Each
// file runs inside its own transaction and is recorded by name, so reruns
// are no-ops.
func Migrate(ctx context.Context, db *bun.DB, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "unable to prepare migrations table")
	}

	source, err := fs.Sub(GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to open migrations")
	}

	names, err := listMigrations(source)
	if err != nil {
		return err
	}

	for _, name := range names {
		applied, err := migrationApplied(ctx, db, name)
		if err != nil {
			return err
		}

		if applied {
			continue
		}

		logger.Info("applying migration", "name", name)

		if err := applyMigration(ctx, db, source, name); err != nil {
			return err
		}
	}

	return nil
}

func listMigrations(source fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to list migrations")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)

	return names, nil
}

func migrationApplied(ctx context.Context, db *bun.DB, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE name = ?", name,
	).Scan(&count)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "unable to check migration state")
	}

	return count > 0, nil
}

func applyMigration(ctx context.Context, db *bun.DB, source fs.FS, name string) error {
	content, err := fs.ReadFile(source, name)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read migration").
			WithMetadata(map[string]any{"name": name})
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryExternal, "migration failed").
				WithMetadata(map[string]any{"name": name})
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (name) VALUES (?)", name,
		); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryExternal, "unable to record migration").
				WithMetadata(map[string]any{"name": name})
		}

		return nil
	})
}
