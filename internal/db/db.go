package db

import (
	"database/sql"
	"fmt"

	"github.com/AdamBeresnev/toilescoins/internal/logging"
	"github.com/AdamBeresnev/toilescoins/migrations"
	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the SQLite database at path. WAL lets the websocket readers
// and the autosave writer work side by side.
func InitDB(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	database, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", path)
	}

	logging.Info("database connected", "path", path)
	return database, nil
}

// InitMemoryDB opens a private in-memory database with the schema applied.
// A single connection keeps every query on the same database.
func InitMemoryDB() (*sqlx.DB, error) {
	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "connect to in-memory database")
	}
	database.SetMaxOpenConns(1)

	if err := RunMigrations(database.DB); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func RunMigrations(database *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, "open migration source")
	}

	driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "create migrate driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return errors.Wrap(err, "create migrate instance")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}
