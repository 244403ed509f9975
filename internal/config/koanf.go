package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar переопределяет путь к YAML файлу.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPath файл, который ищется в рабочей директории.
const DefaultConfigPath = "config.yaml"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8800,
			GRPCPort: 9090,
		},
		Database: DatabaseConfig{
			Storage:       StoragePostgres,
			RunMigrations: true,
		},
		Security: SecurityConfig{
			CORSOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AuthRateLimit: 20,
		},
		Media: MediaConfig{
			Folder:      "flixxit",
			MaxUploadMB: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load собирает конфигурацию слоями: значения по умолчанию, YAML файл (если есть),
// переменные окружения. Результат проходит Validate.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Database.Storage = strings.ToLower(strings.TrimSpace(cfg.Database.Storage))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

// sliceConfigPaths поля, которые в окружении задаются строкой через запятую
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":            "server.port",
	"grpc_port":       "server.grpc_port",
	"database_url":    "database.url",
	"storage":         "database.storage",
	"run_migrations":  "database.run_migrations",
	"secret_key":      "security.secret_key",
	"cors_origins":    "security.cors_origins",
	"auth_rate_limit": "security.auth_rate_limit",
	"log_level":       "logging.level",
	"s3_bucket":       "media.bucket",
	"s3_region":       "media.region",
	"s3_endpoint":     "media.endpoint",
	"s3_access_key":   "media.access_key",
	"s3_secret_key":   "media.secret_key",
	"s3_public_url":   "media.public_url",
	"s3_folder":       "media.folder",
	"upload_max_mb":   "media.max_upload_mb",
}

// envTransformFunc переводит имя переменной окружения в путь koanf.
// Незнакомые переменные пропускаются.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
