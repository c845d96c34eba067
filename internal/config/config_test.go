package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "change-me-in-production", cfg.SecretKey)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, "/tmp/docproc_uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, 4, cfg.Upload.Workers)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("UPLOAD_DIR", "/data/uploads")
	t.Setenv("MAX_UPLOAD_SIZE", "1048576")
	t.Setenv("PROCESS_WORKERS", "8")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3", cfg.StorageBackend)
	assert.Equal(t, "/data/uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxSize)
	assert.Equal(t, 8, cfg.Upload.Workers)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE", "a-lot")
	t.Setenv("PROCESS_WORKERS", "many")

	cfg := Load()

	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, 4, cfg.Upload.Workers)
}
