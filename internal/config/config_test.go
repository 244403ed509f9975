package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate убирает из окружения все переменные, которые читает Load.
func isolate(t *testing.T) {
	t.Helper()
	for key := range envMappings {
		name := strings.ToUpper(key)
		if old, ok := os.LookupEnv(name); ok {
			require.NoError(t, os.Unsetenv(name))
			t.Cleanup(func() { _ = os.Setenv(name, old) })
		}
	}
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8800, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.GRPCPort)
	assert.Equal(t, StorageMemory, cfg.Database.Storage)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Security.CORSOrigins)
	assert.Equal(t, 20, cfg.Security.AuthRateLimit)
	assert.Equal(t, "flixxit", cfg.Media.Folder)
	assert.Equal(t, int64(100<<20), cfg.Media.MaxUploadBytes())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://flixxit:pw@db:5432/flixxit?sslmode=disable")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CORS_ORIGINS", " https://flixxit.io ,https://admin.flixxit.io,")
	t.Setenv("AUTH_RATE_LIMIT", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StoragePostgres, cfg.Database.Storage)
	assert.False(t, cfg.Database.RunMigrations)
	assert.Equal(t, []string{"https://flixxit.io", "https://admin.flixxit.io"}, cfg.Security.CORSOrigins)
	assert.Equal(t, 0, cfg.Security.AuthRateLimit)
	assert.Equal(t, "media", cfg.Media.Bucket)
	assert.Equal(t, "http://minio:9000", cfg.Media.Endpoint)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "flixxit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8000
  grpc_port: 9100
database:
  storage: memory
security:
  secret_key: from-file
  cors_origins:
    - https://flixxit.io
media:
  folder: prod
`), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("GRPC_PORT", "9200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 9200, cfg.Server.GRPCPort)
	assert.Equal(t, "from-file", cfg.Security.SecretKey)
	assert.Equal(t, []string{"https://flixxit.io"}, cfg.Security.CORSOrigins)
	assert.Equal(t, "prod", cfg.Media.Folder)
}

func TestLoadRequiresSecret(t *testing.T) {
	isolate(t)
	t.Setenv("STORAGE", "memory")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY is required")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.SecretKey = "s3cret"
		cfg.Database.URL = "postgres://localhost/flixxit"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"postgres without url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL is required"},
		{"unknown storage", func(c *Config) { c.Database.Storage = "mongo" }, "STORAGE must be"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "PORT must be between"},
		{"same ports", func(c *Config) { c.Server.GRPCPort = c.Server.Port }, "must differ"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"negative rate limit", func(c *Config) { c.Security.AuthRateLimit = -1 }, "AUTH_RATE_LIMIT"},
		{"zero upload limit", func(c *Config) { c.Media.MaxUploadMB = 0 }, "UPLOAD_MAX_MB"},
		{"relative endpoint", func(c *Config) { c.Media.Endpoint = "minio:9000" }, "S3_ENDPOINT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LoggingConfig{Level: "DEBUG"}.SlogLevel().String())
	assert.Equal(t, "WARN", LoggingConfig{Level: "warn"}.SlogLevel().String())
	assert.Equal(t, "INFO", LoggingConfig{Level: ""}.SlogLevel().String())
}
