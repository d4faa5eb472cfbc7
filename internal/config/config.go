// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the server process.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// DBPath is the path to the SQLite database file.
	DBPath string
	// TemplateDir and StaticDir point at the web assets.
	TemplateDir string
	StaticDir   string
	// UploadDir is where receipt images are stored. Created at startup.
	UploadDir string
	// Env is "development" or "production"; controls logger mode and the
	// Secure flag on session cookies.
	Env string

	// Optional bootstrap credentials for the first user. Applied only when
	// the users table is empty.
	AdminUser     string
	AdminPassword string
	AdminEmail    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("ADDR", ":8080"),
		DBPath:        getenv("DB_PATH", "transitionos.db"),
		TemplateDir:   getenv("TEMPLATE_DIR", "web/templates"),
		StaticDir:     getenv("STATIC_DIR", "web/static"),
		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		Env:           getenv("ENV", "development"),
		AdminUser:     os.Getenv("ADMIN_USER"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@localhost"),
	}
}

// Production reports whether the app runs in production mode.
func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
