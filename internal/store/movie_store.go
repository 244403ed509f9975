package store

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"flixxit-service/internal/domain"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	// ErrViewsOverflow приращение выводит счетчик за пределы int64
	ErrViewsOverflow = errors.New("views counter overflow")
)

// MovieStore определяет интерфейс для операций с фильмами.
// IncrementViews атомарна на уровне одного фильма: параллельные вызовы не теряют приращений.
type MovieStore interface {
	Create(ctx context.Context, movie *domain.Movie) error
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
	// GetByIDs возвращает найденные фильмы; отсутствующие ID просто пропускаются.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Movie, error)
	Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error)
	Delete(ctx context.Context, id string) error
	// List возвращает все фильмы, новые первыми.
	List(ctx context.Context) ([]*domain.Movie, error)
	// Random возвращает один случайный фильм (или сериал) либо ErrMovieNotFound.
	Random(ctx context.Context, isSeries bool) (*domain.Movie, error)
	// IncrementViews прибавляет by к счетчику и ставит lastViewed = at, возвращая новое состояние.
	IncrementViews(ctx context.Context, id string, by int64, at time.Time) (*domain.Movie, error)
	// TopViewed фильмы с views > 0: views по убыванию, затем lastViewed по убыванию.
	TopViewed(ctx context.Context, limit int) ([]*domain.Movie, error)
	// Recent самые новые фильмы, кроме exclude.
	Recent(ctx context.Context, exclude []string, limit int) ([]*domain.Movie, error)
}

// MockMovieStore хранит фильмы в памяти.
type MockMovieStore struct {
	mu     sync.RWMutex
	movies map[string]*domain.Movie
}

func NewMockMovieStore() *MockMovieStore {
	return &MockMovieStore{movies: make(map[string]*domain.Movie)}
}

func copyMovie(m *domain.Movie) *domain.Movie {
	c := *m
	if m.LastViewed != nil {
		lv := *m.LastViewed
		c.LastViewed = &lv
	}
	return &c
}

// newestFirst сортирует по дате создания по убыванию, при равенстве по ID для стабильности.
func newestFirst(movies []*domain.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		if !movies[i].CreatedAt.Equal(movies[j].CreatedAt) {
			return movies[i].CreatedAt.After(movies[j].CreatedAt)
		}
		return movies[i].ID < movies[j].ID
	})
}

func (m *MockMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now().UTC()
	}
	movie.UpdatedAt = movie.CreatedAt
	m.movies[movie.ID] = copyMovie(movie)
	return nil
}

func (m *MockMovieStore) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if movie, ok := m.movies[id]; ok {
		return copyMovie(movie), nil
	}
	return nil, ErrMovieNotFound
}

func (m *MockMovieStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make([]*domain.Movie, 0, len(ids))
	for _, id := range ids {
		if movie, ok := m.movies[id]; ok {
			found = append(found, copyMovie(movie))
		}
	}
	return found, nil
}

func (m *MockMovieStore) Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movie, ok := m.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	patch.Apply(movie)
	movie.UpdatedAt = time.Now().UTC()
	return copyMovie(movie), nil
}

func (m *MockMovieStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(m.movies, id)
	return nil
}

func (m *MockMovieStore) snapshot(keep func(*domain.Movie) bool) []*domain.Movie {
	movies := make([]*domain.Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		if keep == nil || keep(movie) {
			movies = append(movies, copyMovie(movie))
		}
	}
	return movies
}

func (m *MockMovieStore) List(ctx context.Context) ([]*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	movies := m.snapshot(nil)
	newestFirst(movies)
	return movies, nil
}

func (m *MockMovieStore) Random(ctx context.Context, isSeries bool) (*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	candidates := m.snapshot(func(movie *domain.Movie) bool { return movie.IsSeries == isSeries })
	if len(candidates) == 0 {
		return nil, ErrMovieNotFound
	}
	return candidates[rand.IntN(len(candidates))], nil
}

func (m *MockMovieStore) IncrementViews(ctx context.Context, id string, by int64, at time.Time) (*domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movie, ok := m.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	if by > math.MaxInt64-movie.Views {
		return nil, ErrViewsOverflow
	}
	movie.Views += by
	viewedAt := at
	movie.LastViewed = &viewedAt
	return copyMovie(movie), nil
}

func (m *MockMovieStore) TopViewed(ctx context.Context, limit int) ([]*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	movies := m.snapshot(func(movie *domain.Movie) bool { return movie.Views > 0 })
	newestFirst(movies)
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := movies[i], movies[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		switch {
		case a.LastViewed == nil || b.LastViewed == nil:
			return a.LastViewed != nil && b.LastViewed == nil
		default:
			return a.LastViewed.After(*b.LastViewed)
		}
	})
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}

func (m *MockMovieStore) Recent(ctx context.Context, exclude []string, limit int) ([]*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	movies := m.snapshot(func(movie *domain.Movie) bool {
		_, excluded := skip[movie.ID]
		return !excluded
	})
	newestFirst(movies)
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}
