package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("")
	require.Error(t, err)
}

func TestGenerateAndValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	tm, err := NewTokenManager("super-secret")
	require.NoError(t, err)

	for _, isAdmin := range []bool{true, false} {
		tok, err := tm.Generate("user-123", isAdmin)
		require.NoError(t, err)

		claims, err := tm.Validate(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, isAdmin, claims.IsAdmin)
		assert.Equal(t, TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	}
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		issued time.Time
	}{
		{"whole second", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"sub-second", time.Date(2026, 3, 1, 12, 0, 0, 700_000_000, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			issuer, err := NewTokenManager("secret", WithClock(fixedClock(tt.issued)))
			require.NoError(t, err)
			tok, err := issuer.Generate("u1", false)
			require.NoError(t, err)

			claims, err := issuer.Validate(tok)
			require.NoError(t, err)
			// exp хранится в целых секундах
			expiry := claims.ExpiresAt.Time
			assert.True(t, expiry.Equal(tt.issued.Add(TokenTTL).Truncate(time.Second)), "exp %s", expiry)

			before, err := NewTokenManager("secret", WithClock(fixedClock(expiry.Add(-time.Millisecond))))
			require.NoError(t, err)
			claims, err = before.Validate(tok)
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.UserID)

			for _, at := range []time.Time{expiry, expiry.Add(time.Millisecond)} {
				after, err := NewTokenManager("secret", WithClock(fixedClock(at)))
				require.NoError(t, err)
				_, err = after.Validate(tok)
				assert.ErrorIs(t, err, ErrTokenExpired, "validated at %s", at)
			}
		})
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	signer, err := NewTokenManager("right-secret")
	require.NoError(t, err)
	tok, err := signer.Generate("u2", true)
	require.NoError(t, err)

	verifier, err := NewTokenManager("wrong-secret")
	require.NoError(t, err)
	_, err = verifier.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidate_Tampered(t *testing.T) {
	t.Parallel()

	tm, err := NewTokenManager("secret")
	require.NoError(t, err)
	tok, err := tm.Generate("u3", false)
	require.NoError(t, err)

	// подменяем payload, оставляя исходную подпись
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"id":"u3","isAdmin":true,"exp":4102444800}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	_, err = tm.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	tm, err := NewTokenManager("k")
	require.NoError(t, err)

	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		_, err := tm.Validate(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}
