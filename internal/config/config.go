package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Config конфигурация процесса flixxitservice.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Media    MediaConfig    `koanf:"media"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Port     int `koanf:"port"`
	GRPCPort int `koanf:"grpc_port"`
}

// DatabaseConfig хранилище: postgres или memory (in-memory, для разработки и тестов).
type DatabaseConfig struct {
	URL           string `koanf:"url"`
	Storage       string `koanf:"storage"`
	RunMigrations bool   `koanf:"run_migrations"`
}

type SecurityConfig struct {
	SecretKey   string   `koanf:"secret_key"`
	CORSOrigins []string `koanf:"cors_origins"`
	// AuthRateLimit запросов в минуту с IP на /api/auth/*, 0 отключает
	AuthRateLimit int `koanf:"auth_rate_limit"`
}

// MediaConfig S3-совместимое хранилище медиафайлов.
type MediaConfig struct {
	Bucket      string `koanf:"bucket"`
	Region      string `koanf:"region"`
	Endpoint    string `koanf:"endpoint"`
	AccessKey   string `koanf:"access_key"`
	SecretKey   string `koanf:"secret_key"`
	PublicURL   string `koanf:"public_url"`
	Folder      string `koanf:"folder"`
	MaxUploadMB int    `koanf:"max_upload_mb"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel уровень логирования; неизвестное значение отсекается в Validate.
func (l LoggingConfig) SlogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(l.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}

// MaxUploadBytes лимит тела запроса загрузки.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) << 20
}

// Validate проверяет конфигурацию и возвращает все найденные ошибки разом.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Security.SecretKey) == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if err := validatePort("PORT", c.Server.Port); err != nil {
		errs = append(errs, err)
	}
	if err := validatePort("GRPC_PORT", c.Server.GRPCPort); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Port == c.Server.GRPCPort {
		errs = append(errs, fmt.Errorf("PORT and GRPC_PORT must differ, both are %d", c.Server.Port))
	}

	switch c.Database.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Database.Storage))
	}

	if _, ok := logLevels[strings.ToLower(c.Logging.Level)]; !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Logging.Level))
	}
	if c.Security.AuthRateLimit < 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT must not be negative, got %d", c.Security.AuthRateLimit))
	}
	if c.Media.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("UPLOAD_MAX_MB must be positive, got %d", c.Media.MaxUploadMB))
	}
	if c.Media.Endpoint != "" {
		if u, err := url.Parse(c.Media.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("S3_ENDPOINT must be an absolute URL, got %q", c.Media.Endpoint))
		}
	}

	return errors.Join(errs...)
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}
