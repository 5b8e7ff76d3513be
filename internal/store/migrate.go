package store

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending up migrations from migrationsPath against dbURL.
// A database already at the latest version is not an error.
func Migrate(dbURL, migrationsPath string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	migrator, err := migrate.New("file://"+migrationsPath, toPgx5URL(dbURL))
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if srcErr != nil {
			logger.Printf("store: close migration source: %v", srcErr)
		}
		if dbErr != nil {
			logger.Printf("store: close migration db: %v", dbErr)
		}
	}()

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is dirty at migration version %d", version)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Println("store: migrations already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Printf("store: migrated schema from version %d to %d", version, newVersion)
	return nil
}

// toPgx5URL rewrites a postgres:// DSN to the pgx5:// scheme golang-migrate's
// pgx/v5 driver registers.
func toPgx5URL(dbURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dbURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURL, prefix)
		}
	}
	return dbURL
}
