package store

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const sqliteDialect = "sqlite3"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens a SQLite database, sets recommended pragmas, and validates connectivity.
// Use ":memory:" for a throwaway database.
func Open(dbPath string) (*sql.DB, error) {
	// Connection-scoped pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

// OpenMigrated opens dbPath and brings its schema up to date.
func OpenMigrated(dbPath string) (*sql.DB, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
