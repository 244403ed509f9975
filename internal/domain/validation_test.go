package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidator_BasicEmail(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		email string
		valid bool
	}{
		{"neo@matrix.io", true},
		{"a.b+c@sub.example.org", true},
		{"no-at-sign.io", false},
		{"two@@example.com", false},
		{"spaces in@example.com", false},
		{"nodot@example", false},
	}
	for _, tt := range tests {
		err := v.Struct(RegisterRequest{Username: "neo", Email: tt.email, Password: "secret1"})
		if tt.valid {
			assert.NoError(t, err, tt.email)
		} else {
			assert.Error(t, err, tt.email)
		}
	}
}

func TestMoviePatchApply(t *testing.T) {
	m := &Movie{Title: "Old", Genre: "drama", Limit: 12, Views: 40}
	title := "New"
	limit := 16
	series := true
	MoviePatch{Title: &title, Limit: &limit, IsSeries: &series}.Apply(m)

	assert.Equal(t, "New", m.Title)
	assert.Equal(t, "drama", m.Genre)
	assert.Equal(t, 16, m.Limit)
	assert.True(t, m.IsSeries)
	assert.Equal(t, int64(40), m.Views)
}

func TestIdentityCanActOn(t *testing.T) {
	assert.True(t, Identity{UserID: "u1"}.CanActOn("u1"))
	assert.False(t, Identity{UserID: "u1"}.CanActOn("u2"))
	assert.True(t, Identity{UserID: "u1", IsAdmin: true}.CanActOn("u2"))
	assert.False(t, Identity{}.CanActOn(""))
}

func TestUserPublicStripsHash(t *testing.T) {
	u := &User{ID: "u1", PasswordHash: "hash"}
	pub := u.Public()
	assert.Empty(t, pub.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash)
}
