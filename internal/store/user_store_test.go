package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"flixxit-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *MockUserStore, id, username, email string) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), &domain.User{
		ID: id, Username: username, Email: email, PasswordHash: "hash", CreatedAt: baseTime,
	}))
}

func TestMockUserStore_GetByEmailIgnoresCase(t *testing.T) {
	s := NewMockUserStore()
	seedUser(t, s, "u1", "neo", "neo@matrix.io")

	user, err := s.GetByEmail(context.Background(), "NEO@Matrix.IO")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = s.GetByEmail(context.Background(), "smith@matrix.io")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMockUserStore_UpdateAppliesPatch(t *testing.T) {
	s := NewMockUserStore()
	ctx := context.Background()
	seedUser(t, s, "u1", "neo", "neo@matrix.io")
	seedUser(t, s, "u2", "trinity", "trinity@matrix.io")

	pic := "neo.png"
	admin := true
	updated, err := s.Update(ctx, "u1", domain.UserPatch{ProfilePic: &pic, IsAdmin: &admin})
	require.NoError(t, err)
	assert.Equal(t, "neo", updated.Username)
	assert.Equal(t, "neo.png", updated.ProfilePic)
	assert.True(t, updated.IsAdmin)
	assert.Equal(t, "hash", updated.PasswordHash)
	assert.True(t, updated.CreatedAt.Equal(baseTime))
	assert.True(t, updated.UpdatedAt.After(baseTime))

	taken := "TRINITY"
	_, err = s.Update(ctx, "u1", domain.UserPatch{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// неудачный патч не оставляет следов
	stored, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "neo", stored.Username)

	_, err = s.Update(ctx, "missing", domain.UserPatch{ProfilePic: &pic})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMockUserStore_ConcurrentPatchesKeepEachField(t *testing.T) {
	s := NewMockUserStore()
	ctx := context.Background()

	const rounds = 20
	for i := 0; i < rounds; i++ {
		id := fmt.Sprintf("u%02d", i)
		seedUser(t, s, id, "user"+id, id+"@flixxit.io")

		username := "renamed" + id
		pic := id + ".png"
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, id, domain.UserPatch{Username: &username})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, id, domain.UserPatch{ProfilePic: &pic})
			assert.NoError(t, err)
		}()
		wg.Wait()

		user, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, username, user.Username)
		assert.Equal(t, pic, user.ProfilePic)
	}
}
