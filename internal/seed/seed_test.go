package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sampleSeed = `
users:
  - username: admin
    password: changeme
sites:
  - hostname: a.example.com
    name: Site A
    logo:
      title: Logo A
      url: https://cdn.example.com/a.png
      width: 200
      height: 60
    home:
      title: Inicio
      publish: true
      sections:
        - title: Quiénes somos
          body: Somos un equipo.
          publish: true
      blogs:
        - title: Blog
          publish: true
          entries:
            - title: Primera entrada
              body: Hola.
              published_at: "2025-04-01T10:00:00Z"
            - title: Segunda entrada
              body: Otra vez.
              published_at: "2025-04-02T22:31:00Z"
            - title: Borrador
  - hostname: b.example.com
    port: 8080
`

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func writeSeedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSeed), 0o644))
	return path
}

func TestApplyFileBuildsSites(t *testing.T) {
	gdb := setupSeedTestDB(t)
	seeder := NewSeeder(gdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	report, err := seeder.ApplyFile(ctx, writeSeedFile(t))
	require.NoError(t, err)
	assert.Equal(t, Report{Users: 1, Sites: 2, Pages: 6}, report)

	sites := service.NewSiteService(gdb)
	siteA, err := sites.Resolve(ctx, "a.example.com", 80)
	require.NoError(t, err)
	assert.Equal(t, "Site A", siteA.SiteName)
	require.NotNil(t, siteA.RootPageID)

	settings, err := service.NewBrandingService(gdb).ForSite(ctx, siteA)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", settings.LogoURL())

	siteB, err := sites.Resolve(ctx, "b.example.com:8080", 0)
	require.NoError(t, err)
	assert.Nil(t, siteB.RootPageID)

	pages := service.NewPageService(gdb)
	children, err := pages.Children(ctx, *siteA.RootPageID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "quienes-somos", children[0].Slug)

	entries, err := pages.BlogEntries(ctx, children[1].ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Segunda entrada", entries[0].Title)
	assert.Equal(t, "Primera entrada", entries[1].Title)
}

func TestApplyIsIdempotent(t *testing.T) {
	gdb := setupSeedTestDB(t)
	seeder := NewSeeder(gdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	path := writeSeedFile(t)

	_, err := seeder.ApplyFile(context.Background(), path)
	require.NoError(t, err)

	report, err := seeder.ApplyFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, Report{SkippedSites: 2}, report)

	var count int64
	gdb.Model(&db.Page{}).Count(&count)
	assert.EqualValues(t, 6, count)
}

const logoSeed = `
sites:
  - hostname: c.example.com
    port: 80
    name: Site C
    logo:
      url: %q
    home:
      title: Inicio
      publish: true
      sections:
        - title: Contacto
          slug: contacto
          publish: true
`

func TestApplyRollsBackFailedSite(t *testing.T) {
	gdb := setupSeedTestDB(t)
	seeder := NewSeeder(gdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sites.yaml")

	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(logoSeed, "not a url")), 0o644))
	_, err := seeder.ApplyFile(ctx, path)
	require.ErrorIs(t, err, service.ErrInvalidInput)

	var count int64
	gdb.Model(&db.Site{}).Count(&count)
	assert.Zero(t, count)
	gdb.Model(&db.Image{}).Count(&count)
	assert.Zero(t, count)

	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(logoSeed, "https://cdn.example.com/c.png")), 0o644))
	report, err := seeder.ApplyFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, Report{Sites: 1, Pages: 2}, report)

	site, err := service.NewSiteService(gdb).Resolve(ctx, "c.example.com", 80)
	require.NoError(t, err)
	require.NotNil(t, site.RootPageID)

	children, err := service.NewPageService(gdb).Children(ctx, *site.RootPageID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "contacto", children[0].Slug)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
