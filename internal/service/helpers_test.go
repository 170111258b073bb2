package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sitebrand/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func mustCreateSite(t *testing.T, sites *SiteService, hostname string, port int) *db.Site {
	t.Helper()
	site, err := sites.Create(context.Background(), SiteInput{Hostname: hostname, Port: port})
	if err != nil {
		t.Fatalf("failed to create site %s:%d: %v", hostname, port, err)
	}
	return site
}
