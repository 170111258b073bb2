package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret signs session cookies when SESSION_SECRET is unset.
// It is only accepted outside release mode.
const DefaultSessionSecret = "sitebrand-dev-secret"

// AppConfig collects the settings needed to run the server.
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseDriver     string
	DatabaseDSN        string
	SessionSecret      string
	GinMode            string
	LogLevel           string
	TrustProxyHeaders  bool
	CORSAllowedOrigins []string
	SeedFile           string
	SuperRootUserName  string
	SuperRootPassword  string
}

// LoadDotEnv reads .env (or the given files) into the process environment.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads the configuration from environment variables and fills in defaults.
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))
	if driver == "" {
		driver = "sqlite"
	}

	dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	}
	if dsn == "" && driver == "sqlite" {
		dsn = "sitebrand.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = DefaultSessionSecret
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseDriver:     driver,
		DatabaseDSN:        dsn,
		SessionSecret:      sessionSecret,
		GinMode:            ginMode,
		LogLevel:           logLevel,
		TrustProxyHeaders:  parseBool(os.Getenv("TRUST_PROXY_HEADERS")),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SeedFile:           strings.TrimSpace(os.Getenv("SEED_FILE")),
		SuperRootUserName:  strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword:  strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}
}

// UsesDefaultSessionSecret reports whether sessions are signed with the
// built-in development secret.
func (c AppConfig) UsesDefaultSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// Validate rejects settings the server must not start with.
func (c AppConfig) Validate() error {
	if c.GinMode == "release" && c.UsesDefaultSessionSecret() {
		return errors.New("SESSION_SECRET must be set when GIN_MODE is release")
	}
	return nil
}

func parseBool(raw string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && value
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
