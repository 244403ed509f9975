package store

import (
	"context"
	"testing"
	"time"

	"flixxit-service/internal/domain"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockListStore_TitleIsUnique(t *testing.T) {
	s := NewMockListStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.List{ID: "l1", Title: "Action Hits"}))
	assert.ErrorIs(t, s.Create(ctx, &domain.List{ID: "l2", Title: "action hits"}), ErrListAlreadyExists)

	require.NoError(t, s.Create(ctx, &domain.List{ID: "l2", Title: "Comedy"}))
	title := "Action Hits"
	_, err := s.Update(ctx, "l2", domain.ListPatch{Title: &title})
	assert.ErrorIs(t, err, ErrListAlreadyExists)

	unchanged, err := s.GetByID(ctx, "l2")
	require.NoError(t, err)
	assert.Equal(t, "Comedy", unchanged.Title)
}

func TestMockListStore_Top10(t *testing.T) {
	s := NewMockListStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.List{ID: "plain", Title: "Plain"}))

	lists, err := s.Top10(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)

	require.NoError(t, s.Create(ctx, &domain.List{ID: "old", Title: "Old", IsTop10: true, Order: 1, CreatedAt: baseTime}))
	require.NoError(t, s.Create(ctx, &domain.List{ID: "new", Title: "New", IsTop10: true, Order: 1, CreatedAt: baseTime.Add(time.Hour)}))
	require.NoError(t, s.Create(ctx, &domain.List{ID: "later", Title: "Later", IsTop10: true, Order: 2, CreatedAt: baseTime.Add(2 * time.Hour)}))

	lists, err = s.Top10(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "new", lists[0].ID)
}

func TestMockListStore_SampleFilters(t *testing.T) {
	s := NewMockListStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.List{ID: "a", Title: "A", Type: "movie", Genre: "action"}))
	require.NoError(t, s.Create(ctx, &domain.List{ID: "b", Title: "B", Type: "series", Genre: "action"}))
	require.NoError(t, s.Create(ctx, &domain.List{ID: "c", Title: "C", Type: "movie", Genre: "drama"}))
	require.NoError(t, s.Create(ctx, &domain.List{ID: "t", Title: "T", Type: "movie", IsTop10: true}))

	all, err := s.Sample(ctx, domain.ListFilter{}, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, listIDs(all))

	movies, err := s.Sample(ctx, domain.ListFilter{Type: "movie"}, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, listIDs(movies))

	actionMovies, err := s.Sample(ctx, domain.ListFilter{Type: "movie", Genre: "action"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, listIDs(actionMovies))

	limited, err := s.Sample(ctx, domain.ListFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMockListStore_ContentIsCopied(t *testing.T) {
	s := NewMockListStore()
	ctx := context.Background()
	content := pq.StringArray{"m1", "m2"}
	require.NoError(t, s.Create(ctx, &domain.List{ID: "l", Title: "L", Content: content}))
	content[0] = "changed"

	got, err := s.GetByID(ctx, "l")
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"m1", "m2"}, got.Content)
}

func TestMockListStore_DeleteNotFound(t *testing.T) {
	s := NewMockListStore()
	assert.ErrorIs(t, s.Delete(context.Background(), "missing"), ErrListNotFound)
}

func listIDs(lists []*domain.List) []string {
	ids := make([]string, 0, len(lists))
	for _, l := range lists {
		ids = append(ids, l.ID)
	}
	return ids
}
