package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded schema files ordered by name.
func Migrations() ([]Statement, []string, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	stmts := make([]Statement, 0, len(names))
	for _, name := range names {
		body, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return nil, nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		stmts = append(stmts, Statement{Query: string(body)})
	}
	return stmts, names, nil
}

// Migrate applies every embedded migration. Files are idempotent so reruns are safe.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	stmts, names, err := Migrations()
	if err != nil {
		return nil, err
	}
	results, err := ExecBatch(ctx, db, stmts)
	if err != nil {
		return names[:len(results)], err
	}
	return names, nil
}
