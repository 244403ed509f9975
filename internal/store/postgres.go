package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL
const (
	pgUniqueViolation   = "23505"
	pgNumericOutOfRange = "22003"
)

// Connect открывает пул соединений с PostgreSQL и проверяет его ping'ом.
func Connect(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	if dbURL == "" {
		return nil, errors.New("DB connection string (dbURL) cannot be empty")
	}
	logger.Info("Attempting to connect to database", slog.String("dbURL_used", MaskDBURL(dbURL)))

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping PostgreSQL database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database.")
	return db, nil
}

// MaskDBURL скрывает пароль в строке подключения для логов.
func MaskDBURL(dbURL string) string {
	schemeEnd := strings.Index(dbURL, "://")
	at := strings.LastIndex(dbURL, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return dbURL
	}
	userInfo := dbURL[schemeEnd+3 : at]
	colon := strings.Index(userInfo, ":")
	if colon < 0 {
		return dbURL
	}
	return dbURL[:schemeEnd+3] + userInfo[:colon] + ":********" + dbURL[at:]
}

// numericOutOfRange true, если err это numeric_value_out_of_range (переполнение bigint).
func numericOutOfRange(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgNumericOutOfRange
}

// uniqueViolation возвращает имя нарушенного ограничения, если err это unique_violation.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
