package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var issued = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "teacher", 15*time.Minute, issued)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(15*time.Minute), tok.Exp)

	claims, err := ParseAccessToken("s3cret", tok.Token, issued.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "teacher", time.Minute, issued)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok.Token, issued)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	_, err = ParseAccessToken("s3cret", tok.Token, issued.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	_, err = ParseAccessToken("s3cret", "not-a-token", issued)
	assert.ErrorIs(t, err, ErrInvalidToken, "garbage")

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"})
	raw, err := noExp.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", raw, issued)
	assert.ErrorIs(t, err, ErrInvalidToken, "no exp")

	numericSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1, "exp": issued.Add(time.Hour).Unix()})
	raw, err = numericSub.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", raw, issued)
	assert.ErrorIs(t, err, ErrInvalidToken, "numeric sub")
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(24*time.Hour, issued)
	require.NoError(t, err)
	b, err := NewRefreshToken(24*time.Hour, issued)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Equal(t, issued.Add(24*time.Hour), a.Exp)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "admin123"))
	assert.False(t, VerifyPassword(hash, "admin124"))

	_, err = HashPassword("abc", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
