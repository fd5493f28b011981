package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const pgDriverName = "postgres"

// Migrate applies all pending migrations from folderPath. An already
// up-to-date schema is not an error.
func Migrate(dsn, folderPath string) error {
	db, err := sql.Open(pgDriverName, dsn)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+folderPath, pgDriverName, driver)
	if err != nil {
		return fmt.Errorf("loading migrations from %s: %w", folderPath, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
