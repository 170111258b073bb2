package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite stores everything in a single SQLite file.
	DriverSQLite = "sqlite"
	// DriverPostgres connects to a PostgreSQL server using a DSN.
	DriverPostgres = "postgres"
)

// DB is the process-wide database handle.
var DB *gorm.DB

// Init opens the database and migrates the schema.
// An empty dsn falls back to sitebrand.db for SQLite.
func Init(driver, dsn string) error {
	gdb, err := Open(driver, dsn, false)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open connects to the configured driver without migrating.
func Open(driver, dsn string, quiet bool) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if quiet {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "sitebrand.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		return gorm.Open(sqlite.Open(path), cfg)
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate creates or updates the tables for every model.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Image{},
		&Page{},
		&Site{},
		&BrandingSettings{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
