package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "DATABASE_DRIVER", "DATABASE_DSN", "DATABASE_PATH", "SESSION_SECRET", "GIN_MODE", "LOG_LEVEL", "TRUST_PROXY_HEADERS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.DatabaseDSN != "sitebrand.db" {
		t.Fatalf("unexpected database defaults: %q %q", cfg.DatabaseDriver, cfg.DatabaseDSN)
	}
	if cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected mode defaults: %q %q", cfg.GinMode, cfg.LogLevel)
	}
	if cfg.TrustProxyHeaders {
		t.Fatal("proxy headers must not be trusted by default")
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "host=localhost dbname=sites")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, ,https://ops.example.com")

	cfg := Load()
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr from port, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "postgres" || cfg.DatabaseDSN != "host=localhost dbname=sites" {
		t.Fatalf("unexpected database config: %q %q", cfg.DatabaseDriver, cfg.DatabaseDSN)
	}
	if !cfg.TrustProxyHeaders {
		t.Fatal("expected proxy headers to be trusted")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://ops.example.com" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SITEBRAND_DOTENV_VALUE=loaded\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SITEBRAND_DOTENV_VALUE") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv("SITEBRAND_DOTENV_VALUE"); got != "loaded" {
		t.Fatalf("expected variable from .env, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestValidateSessionSecret(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		secret  string
		wantErr bool
	}{
		{name: "release with default secret", mode: "", secret: "", wantErr: true},
		{name: "release with explicit secret", mode: "release", secret: "s3cr3t-value", wantErr: false},
		{name: "debug with default secret", mode: "debug", secret: "", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GIN_MODE", tt.mode)
			t.Setenv("SESSION_SECRET", tt.secret)

			cfg := Load()
			if got := cfg.UsesDefaultSessionSecret(); got != (tt.secret == "") {
				t.Fatalf("UsesDefaultSessionSecret = %v for secret %q", got, tt.secret)
			}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
