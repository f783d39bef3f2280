package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedJWT(at time.Time) *JWTManager {
	m := NewJWTManager("test-secret", 7*24*time.Hour, 30*24*time.Hour, 30*24*time.Hour)
	m.now = func() time.Time { return at }
	return m
}

func TestJWTManager_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := fixedJWT(now)

	tok, exp, err := m.Generate("user-1", m.TTL)
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), exp)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.Nil(t, claims.IssuedAt)
}

func TestJWTManager_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := fixedJWT(now)
	tok, _, err := m.Generate("user-1", time.Hour)
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	now := time.Now()
	other := NewJWTManager("another-secret", time.Hour, time.Hour, time.Hour)
	tok, _, err := other.Generate("user-1", time.Hour)
	require.NoError(t, err)

	_, err = fixedJWT(now).Parse(tok)
	assert.Error(t, err)
}

func TestJWTManager_RejectsMissingExpiry(t *testing.T) {
	m := fixedJWT(time.Now())
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString(m.Secret)
	require.NoError(t, err)

	_, err = m.Parse(tok)
	assert.Error(t, err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := fixedJWT(time.Now())
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := m.Parse(tok)
		assert.Error(t, err, tok)
	}
}
