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
	"github.com/lib/pq"
)

const movieColumns = `id, title, description, img, img_title, img_sm, trailer, video, year, age_limit, genre, duration, is_series, views, last_viewed, created_at, updated_at`

// PostgresMovieStore реализует MovieStore для PostgreSQL.
type PostgresMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresMovieStore создает новый экземпляр PostgresMovieStore.
func NewPostgresMovieStore(db *sqlx.DB, logger *slog.Logger) (*PostgresMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresMovieStore{db: db, logger: logger}, nil
}

// Create создает новый фильм в базе данных.
func (s *PostgresMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	query := `INSERT INTO movies (id, title, description, img, img_title, img_sm, trailer, video, year, age_limit, genre, duration, is_series, views, last_viewed, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now().UTC()
	}
	movie.UpdatedAt = movie.CreatedAt

	s.logger.DebugContext(ctx, "Executing Create movie query", slog.String("movieID", movie.ID), slog.String("title", movie.Title))
	_, err := s.db.ExecContext(ctx, query,
		movie.ID, movie.Title, movie.Description, movie.Img, movie.ImgTitle, movie.ImgSm,
		movie.Trailer, movie.Video, movie.Year, movie.Limit, movie.Genre, movie.Duration,
		movie.IsSeries, movie.Views, movie.LastViewed, movie.CreatedAt, movie.UpdatedAt,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create movie in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create movie: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie created successfully in DB", slog.String("movieID", movie.ID))
	return nil
}

// GetByID находит фильм по его ID.
func (s *PostgresMovieStore) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	var movie domain.Movie
	s.logger.DebugContext(ctx, "Executing GetMovieByID query", slog.String("movieID", id))
	err := s.db.GetContext(ctx, &movie, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Movie not found by ID in DB", slog.String("movieID", id))
			return nil, ErrMovieNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from DB", slog.String("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}
	return &movie, nil
}

// GetByIDs выбирает фильмы по списку ID одним запросом.
func (s *PostgresMovieStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Movie, error) {
	movies := []*domain.Movie{}
	if len(ids) == 0 {
		return movies, nil
	}
	err := s.db.SelectContext(ctx, &movies, `SELECT `+movieColumns+` FROM movies WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get movies by IDs from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movies by IDs: %w", err)
	}
	return movies, nil
}

// Update сливает патч с текущей записью внутри транзакции.
// Счетчик просмотров не перезаписывается.
func (s *PostgresMovieStore) Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin movie update: %w", err)
	}
	defer tx.Rollback()

	var movie domain.Movie
	if err := tx.GetContext(ctx, &movie, `SELECT `+movieColumns+` FROM movies WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "No movie found to update in DB", slog.String("movieID", id))
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to load movie for update: %w", err)
	}
	patch.Apply(&movie)
	movie.UpdatedAt = time.Now().UTC()

	query := `UPDATE movies SET title = $1, description = $2, img = $3, img_title = $4, img_sm = $5, trailer = $6, video = $7,
              year = $8, age_limit = $9, genre = $10, duration = $11, is_series = $12, updated_at = $13
              WHERE id = $14
              RETURNING ` + movieColumns
	var updated domain.Movie
	err = tx.GetContext(ctx, &updated, query,
		movie.Title, movie.Description, movie.Img, movie.ImgTitle, movie.ImgSm, movie.Trailer, movie.Video,
		movie.Year, movie.Limit, movie.Genre, movie.Duration, movie.IsSeries, movie.UpdatedAt, id,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update movie in DB", slog.String("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit movie update: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie updated successfully in DB", slog.String("movieID", id))
	return &updated, nil
}

// Delete удаляет фильм. Списки, ссылающиеся на него, не трогаются.
func (s *PostgresMovieStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete movie in DB", slog.String("movieID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No movie found to delete in DB", slog.String("movieID", id))
		return ErrMovieNotFound
	}
	s.logger.InfoContext(ctx, "Movie deleted from DB", slog.String("movieID", id))
	return nil
}

func (s *PostgresMovieStore) selectMovies(ctx context.Context, op string, query string, args ...any) ([]*domain.Movie, error) {
	movies := []*domain.Movie{}
	s.logger.DebugContext(ctx, "Executing movies select query", slog.String("op", op))
	if err := s.db.SelectContext(ctx, &movies, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to select movies from DB", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return movies, nil
}

// List возвращает все фильмы, новые первыми.
func (s *PostgresMovieStore) List(ctx context.Context) ([]*domain.Movie, error) {
	return s.selectMovies(ctx, "list movies", `SELECT `+movieColumns+` FROM movies ORDER BY created_at DESC, id`)
}

// Random выбирает один случайный фильм с заданным is_series.
func (s *PostgresMovieStore) Random(ctx context.Context, isSeries bool) (*domain.Movie, error) {
	movies, err := s.selectMovies(ctx, "sample movie",
		`SELECT `+movieColumns+` FROM movies WHERE is_series = $1 ORDER BY random() LIMIT 1`, isSeries)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrMovieNotFound
	}
	return movies[0], nil
}

// IncrementViews атомарно увеличивает счетчик одним UPDATE.
func (s *PostgresMovieStore) IncrementViews(ctx context.Context, id string, by int64, at time.Time) (*domain.Movie, error) {
	query := `UPDATE movies SET views = views + $1, last_viewed = $2 WHERE id = $3 RETURNING ` + movieColumns
	var movie domain.Movie
	s.logger.DebugContext(ctx, "Executing IncrementViews query", slog.String("movieID", id), slog.Int64("by", by))
	if err := s.db.GetContext(ctx, &movie, query, by, at, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		if numericOutOfRange(err) {
			s.logger.WarnContext(ctx, "Views counter would overflow", slog.String("movieID", id), slog.Int64("by", by))
			return nil, ErrViewsOverflow
		}
		s.logger.ErrorContext(ctx, "Failed to increment movie views", slog.String("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to increment views: %w", err)
	}
	return &movie, nil
}

// TopViewed фильмы с просмотрами по убыванию популярности.
func (s *PostgresMovieStore) TopViewed(ctx context.Context, limit int) ([]*domain.Movie, error) {
	return s.selectMovies(ctx, "select top viewed movies",
		`SELECT `+movieColumns+` FROM movies WHERE views > 0
         ORDER BY views DESC, last_viewed DESC NULLS LAST, created_at DESC LIMIT $1`, limit)
}

// Recent самые новые фильмы, исключая exclude.
func (s *PostgresMovieStore) Recent(ctx context.Context, exclude []string, limit int) ([]*domain.Movie, error) {
	return s.selectMovies(ctx, "select recent movies",
		`SELECT `+movieColumns+` FROM movies WHERE NOT (id = ANY($1))
         ORDER BY created_at DESC, id LIMIT $2`, pq.Array(exclude), limit)
}
