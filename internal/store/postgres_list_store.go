package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flixxit-service/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const listColumns = `id, title, type, genre, content, is_top10, sort_order, created_at, updated_at`

// PostgresListStore реализует ListStore для PostgreSQL.
type PostgresListStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresListStore создает новый экземпляр PostgresListStore.
func NewPostgresListStore(db *sqlx.DB, logger *slog.Logger) (*PostgresListStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresListStore{db: db, logger: logger}, nil
}

// Create создает новый список.
func (s *PostgresListStore) Create(ctx context.Context, list *domain.List) error {
	query := `INSERT INTO lists (id, title, type, genre, content, is_top10, sort_order, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}
	list.UpdatedAt = list.CreatedAt
	if list.Content == nil {
		list.Content = pq.StringArray{}
	}

	s.logger.DebugContext(ctx, "Executing Create list query", slog.String("listID", list.ID), slog.String("title", list.Title))
	_, err := s.db.ExecContext(ctx, query,
		list.ID, list.Title, list.Type, list.Genre, list.Content, list.IsTop10, list.Order, list.CreatedAt, list.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "List title already exists", slog.String("title", list.Title), slog.String("constraint_name", constraint))
			return ErrListAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create list in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create list: %w", err)
	}
	s.logger.InfoContext(ctx, "List created successfully in DB", slog.String("listID", list.ID))
	return nil
}

// GetByID находит список по ID.
func (s *PostgresListStore) GetByID(ctx context.Context, id string) (*domain.List, error) {
	var list domain.List
	err := s.db.GetContext(ctx, &list, `SELECT `+listColumns+` FROM lists WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "List not found by ID in DB", slog.String("listID", id))
			return nil, ErrListNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get list by ID from DB", slog.String("listID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get list by ID: %w", err)
	}
	return &list, nil
}

// Update сливает патч с текущей записью внутри транзакции.
func (s *PostgresListStore) Update(ctx context.Context, id string, patch domain.ListPatch) (*domain.List, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin list update: %w", err)
	}
	defer tx.Rollback()

	var list domain.List
	if err := tx.GetContext(ctx, &list, `SELECT `+listColumns+` FROM lists WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "No list found to update in DB", slog.String("listID", id))
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load list for update: %w", err)
	}
	patch.Apply(&list)
	list.UpdatedAt = time.Now().UTC()

	query := `UPDATE lists SET title = $1, type = $2, genre = $3, content = $4, is_top10 = $5, sort_order = $6, updated_at = $7
              WHERE id = $8
              RETURNING ` + listColumns
	var updated domain.List
	err = tx.GetContext(ctx, &updated, query,
		list.Title, list.Type, list.Genre, list.Content, list.IsTop10, list.Order, list.UpdatedAt, id)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return nil, ErrListAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to update list in DB", slog.String("listID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit list update: %w", err)
	}
	s.logger.InfoContext(ctx, "List updated successfully in DB", slog.String("listID", id))
	return &updated, nil
}

// Delete удаляет список по ID.
func (s *PostgresListStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete list in DB", slog.String("listID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete list: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrListNotFound
	}
	s.logger.InfoContext(ctx, "List deleted from DB", slog.String("listID", id))
	return nil
}

func (s *PostgresListStore) selectLists(ctx context.Context, op string, query string, args ...any) ([]*domain.List, error) {
	lists := []*domain.List{}
	if err := s.db.SelectContext(ctx, &lists, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to select lists from DB", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return lists, nil
}

// Top10 возвращает не более одного списка с is_top10.
func (s *PostgresListStore) Top10(ctx context.Context) ([]*domain.List, error) {
	return s.selectLists(ctx, "select top10 list",
		`SELECT `+listColumns+` FROM lists WHERE is_top10 ORDER BY sort_order ASC, created_at DESC LIMIT 1`)
}

// Sample выбирает случайные списки. Фильтры добавляются только если заданы.
func (s *PostgresListStore) Sample(ctx context.Context, filter domain.ListFilter, size int) ([]*domain.List, error) {
	conds := []string{"NOT is_top10"}
	args := []any{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Genre != "" {
		args = append(args, filter.Genre)
		conds = append(conds, fmt.Sprintf("genre = $%d", len(args)))
	}
	args = append(args, size)
	query := fmt.Sprintf(`SELECT %s FROM lists WHERE %s ORDER BY random() LIMIT $%d`,
		listColumns, strings.Join(conds, " AND "), len(args))
	return s.selectLists(ctx, "sample lists", query, args...)
}

// ListAll возвращает все списки для админки.
func (s *PostgresListStore) ListAll(ctx context.Context) ([]*domain.List, error) {
	return s.selectLists(ctx, "list all lists",
		`SELECT `+listColumns+` FROM lists ORDER BY sort_order ASC, created_at DESC`)
}
