package store

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"flixxit-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func seedMovies(t *testing.T, s *MockMovieStore, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("m%02d", i)
		require.NoError(t, s.Create(context.Background(), &domain.Movie{
			ID:        id,
			Title:     "Movie " + id,
			CreatedAt: baseTime.Add(time.Duration(i) * time.Hour),
		}))
		ids = append(ids, id)
	}
	return ids
}

func TestMockMovieStore_IncrementViewsConcurrent(t *testing.T) {
	s := NewMockMovieStore()
	ctx := context.Background()
	seedMovies(t, s, 2)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.IncrementViews(ctx, "m00", 3, time.Now())
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.IncrementViews(ctx, "m01", 1, time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	first, err := s.GetByID(ctx, "m00")
	require.NoError(t, err)
	assert.Equal(t, int64(150), first.Views)
	assert.NotNil(t, first.LastViewed)

	second, err := s.GetByID(ctx, "m01")
	require.NoError(t, err)
	assert.Equal(t, int64(50), second.Views)
}

func TestMockMovieStore_IncrementViewsNotFound(t *testing.T) {
	s := NewMockMovieStore()
	_, err := s.IncrementViews(context.Background(), "missing", 1, time.Now())
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMockMovieStore_IncrementViewsOverflow(t *testing.T) {
	s := NewMockMovieStore()
	ctx := context.Background()
	seedMovies(t, s, 1)

	movie, err := s.IncrementViews(ctx, "m00", math.MaxInt64, baseTime)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), movie.Views)

	_, err = s.IncrementViews(ctx, "m00", 1, baseTime.Add(time.Hour))
	assert.ErrorIs(t, err, ErrViewsOverflow)

	// счетчик и lastViewed не изменились
	movie, err = s.GetByID(ctx, "m00")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), movie.Views)
	require.NotNil(t, movie.LastViewed)
	assert.True(t, movie.LastViewed.Equal(baseTime))

	top, err := s.TopViewed(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m00"}, movieIDs(top))
}

func TestMockMovieStore_UpdateKeepsViews(t *testing.T) {
	s := NewMockMovieStore()
	ctx := context.Background()
	seedMovies(t, s, 1)
	_, err := s.IncrementViews(ctx, "m00", 7, baseTime)
	require.NoError(t, err)

	title := "Renamed"
	updated, err := s.Update(ctx, "m00", domain.MoviePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, int64(7), updated.Views)

	_, err = s.Update(ctx, "missing", domain.MoviePatch{Title: &title})
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMockMovieStore_TopViewedAndRecent(t *testing.T) {
	s := NewMockMovieStore()
	ctx := context.Background()
	seedMovies(t, s, 6)

	_, err := s.IncrementViews(ctx, "m00", 5, baseTime)
	require.NoError(t, err)
	_, err = s.IncrementViews(ctx, "m01", 2, baseTime)
	require.NoError(t, err)
	_, err = s.IncrementViews(ctx, "m02", 2, baseTime.Add(time.Minute))
	require.NoError(t, err)

	top, err := s.TopViewed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"m00", "m02", "m01"}, movieIDs(top))

	recent, err := s.Recent(ctx, movieIDs(top), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m05", "m04"}, movieIDs(recent))
}

func TestMockMovieStore_RandomFiltersBySeries(t *testing.T) {
	s := NewMockMovieStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.Movie{ID: "film", Title: "Film"}))

	_, err := s.Random(ctx, true)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	require.NoError(t, s.Create(ctx, &domain.Movie{ID: "show", Title: "Show", IsSeries: true}))
	for i := 0; i < 10; i++ {
		m, err := s.Random(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, "show", m.ID)
	}
}

func TestMockMovieStore_GetByIDsSkipsMissing(t *testing.T) {
	s := NewMockMovieStore()
	seedMovies(t, s, 3)
	movies, err := s.GetByIDs(context.Background(), []string{"m02", "gone", "m00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m02", "m00"}, movieIDs(movies))
}

func movieIDs(movies []*domain.Movie) []string {
	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}
