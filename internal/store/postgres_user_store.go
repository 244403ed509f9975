package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"flixxit-service/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password_hash, profile_pic, is_admin, created_at, updated_at`

// PostgresUserStore реализует UserStore для PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresUserStore создает новый экземпляр PostgresUserStore.
func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) (*PostgresUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresUserStore{db: db, logger: logger}, nil
}

// userConflict сопоставляет нарушенное ограничение с ошибкой хранилища.
func userConflict(constraint string) error {
	if constraint == "users_username_key" {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// Create создает нового пользователя в базе данных.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, profile_pic, is_admin, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt

	s.logger.DebugContext(ctx, "Executing Create user query", slog.String("userID", user.ID), slog.String("username", user.Username))
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.ProfilePic, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "User already exists (unique constraint violation in DB)",
				slog.String("userID", user.ID),
				slog.String("constraint_name", constraint))
			return userConflict(constraint)
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.String("userID", user.ID))
	return nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID находит пользователя по ID.
func (s *PostgresUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	s.logger.DebugContext(ctx, "Executing GetByID query", slog.String("userID", userID))
	user, err := s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.WarnContext(ctx, "User not found by ID in DB", slog.String("userID", userID))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail находит пользователя по email.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.logger.DebugContext(ctx, "Executing GetByEmail query")
	user, err := s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to get user by email from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Update применяет patch к строке, заблокированной SELECT ... FOR UPDATE.
func (s *PostgresUserStore) Update(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin user update: %w", err)
	}
	defer tx.Rollback()

	var user domain.User
	if err := tx.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "No user found to update in DB", slog.String("userID", userID))
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user for update: %w", err)
	}
	patch.Apply(&user)
	user.UpdatedAt = time.Now().UTC()

	query := `UPDATE users SET username = $1, email = $2, password_hash = $3, profile_pic = $4, is_admin = $5, updated_at = $6
              WHERE id = $7
              RETURNING ` + userColumns
	s.logger.DebugContext(ctx, "Executing Update user query", slog.String("userID", userID))
	var updated domain.User
	err = tx.GetContext(ctx, &updated, query, user.Username, user.Email, user.PasswordHash, user.ProfilePic, user.IsAdmin, user.UpdatedAt, userID)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "Update failed: username or email already exists (DB constraint)", slog.String("userID", userID), slog.String("constraint", constraint))
			return nil, userConflict(constraint)
		}
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}
	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.String("userID", userID))
	return &updated, nil
}

// Delete удаляет пользователя.
func (s *PostgresUserStore) Delete(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user in DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	s.logger.InfoContext(ctx, "User deleted from DB", slog.String("userID", userID))
	return nil
}

// List возвращает пользователей.
func (s *PostgresUserStore) List(ctx context.Context, limit int) ([]*domain.User, error) {
	users := []*domain.User{}
	var err error
	if limit > 0 {
		err = s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		err = s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// MonthlyStats считает регистрации по месяцам.
func (s *PostgresUserStore) MonthlyStats(ctx context.Context) ([]domain.MonthlyUserStat, error) {
	query := `SELECT EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*) AS total
              FROM users GROUP BY month ORDER BY month`
	stats := []domain.MonthlyUserStat{}
	if err := s.db.SelectContext(ctx, &stats, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to aggregate user stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to aggregate user stats: %w", err)
	}
	return stats, nil
}
