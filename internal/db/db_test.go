package db

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sitebrand/internal/pagetype"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:db-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(DriverSQLite, dsn, true)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever", true); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := Open(DriverPostgres, "  ", true); err == nil {
		t.Fatal("expected error for empty postgres dsn")
	}
}

func TestInitCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "sites.db")
	if err := Init(DriverSQLite, path); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := DB.DB(); err == nil {
			sqlDB.Close()
		}
		DB = nil
	})

	if !DB.Migrator().HasTable(&BrandingSettings{}) {
		t.Fatal("expected branding table to be migrated")
	}
}

func TestSiteHostPortIsUnique(t *testing.T) {
	gdb := openTestDB(t)

	if err := gdb.Create(&Site{Hostname: "a.example.com", Port: 80}).Error; err != nil {
		t.Fatalf("failed to create site: %v", err)
	}
	if err := gdb.Create(&Site{Hostname: "a.example.com", Port: 8080}).Error; err != nil {
		t.Fatalf("same host on another port should be allowed: %v", err)
	}
	if err := gdb.Create(&Site{Hostname: "a.example.com", Port: 80}).Error; err == nil {
		t.Fatal("expected unique violation for duplicate host and port")
	}
}

func TestBrandingIsOnePerSite(t *testing.T) {
	gdb := openTestDB(t)

	site := Site{Hostname: "a.example.com", Port: 80}
	if err := gdb.Create(&site).Error; err != nil {
		t.Fatalf("failed to create site: %v", err)
	}
	if err := gdb.Create(&BrandingSettings{SiteID: site.ID}).Error; err != nil {
		t.Fatalf("failed to create branding: %v", err)
	}
	if err := gdb.Create(&BrandingSettings{SiteID: site.ID}).Error; err == nil {
		t.Fatal("expected unique violation for a second branding row")
	}
}

func TestSiteAddress(t *testing.T) {
	tests := []struct {
		site Site
		want string
	}{
		{site: Site{Hostname: "a.example.com", Port: 80}, want: "a.example.com"},
		{site: Site{Hostname: "a.example.com", Port: 8443}, want: "a.example.com:8443"},
		{site: Site{Hostname: "::1", Port: 8080}, want: "[::1]:8080"},
	}
	for _, tt := range tests {
		if got := tt.site.Address(); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestPageContentVariants(t *testing.T) {
	published := time.Date(2025, 4, 2, 22, 31, 0, 0, time.UTC)
	page := Page{Kind: pagetype.KindBlog, Title: "Hello", Slug: "hello", Status: PageStatusLive, Body: "# Hi", FirstPublishedAt: &published}
	page.ID = 7

	content := page.Content()
	blog, ok := content.(pagetype.BlogPage)
	if !ok {
		t.Fatalf("expected BlogPage, got %T", content)
	}
	if blog.Body != "# Hi" || !blog.Live || blog.ID != 7 {
		t.Fatalf("unexpected blog content: %+v", blog)
	}

	index := Page{Kind: pagetype.KindBlogIndex, Intro: "Latest"}
	if got, ok := index.Content().(pagetype.BlogIndexPage); !ok || got.Intro != "Latest" {
		t.Fatalf("expected BlogIndexPage with intro, got %#v", index.Content())
	}

	home := Page{Kind: pagetype.KindHome, Status: PageStatusDraft}
	if home.Content().Kind() != pagetype.KindHome || home.Content().Common().Live {
		t.Fatalf("unexpected home content: %#v", home.Content())
	}
}

func TestEnsureUser(t *testing.T) {
	gdb := openTestDB(t)

	created, err := EnsureUser(gdb, " admin ", " secret ")
	if err != nil || !created {
		t.Fatalf("expected user to be created, created=%v err=%v", created, err)
	}

	created, err = EnsureUser(gdb, "admin", "other")
	if err != nil || created {
		t.Fatalf("expected existing user to be kept, created=%v err=%v", created, err)
	}

	var user User
	if err := gdb.Where("username = ?", "admin").First(&user).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if !user.CheckPassword("secret") {
		t.Fatal("expected original password to match")
	}
	if user.CheckPassword("other") {
		t.Fatal("password must not be overwritten")
	}

	if created, err := EnsureUser(gdb, "", "x"); err != nil || created {
		t.Fatalf("blank username should be ignored, created=%v err=%v", created, err)
	}
}
