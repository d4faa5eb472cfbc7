package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "transitionos.db", cfg.DBPath)
	assert.Equal(t, "web/templates", cfg.TemplateDir)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Production())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("ENV", "production")
	t.Setenv("ADMIN_USER", "root")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.True(t, cfg.Production())
	assert.Equal(t, "root", cfg.AdminUser)
	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, "admin@localhost", cfg.AdminEmail)
}
