// Package repositories opens the local state database and assembles the
// repositories built on top of it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/iamclient/internal/client/migrations"
	"github.com/dmitrijs2005/iamclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/iamclient/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
}

// Close releases the underlying database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite file at path, applies
// migrations and returns the repositories. A non-empty passphrase seals every
// stored value.
func InitDatabase(ctx context.Context, path string, passphrase string) (*Repositories, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; avoids SQLITE_BUSY between the store and the jar
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	var repo metadata.Repository = metadata.NewSQLiteRepository(db)
	if passphrase != "" {
		sealed, err := metadata.NewSealedRepository(ctx, repo, []byte(passphrase))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sealed state: %w", err)
		}
		repo = sealed
	}

	return &Repositories{DB: db, Metadata: repo}, nil
}
