package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret-key-for-testing", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "jane@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	m := newTestManager()

	first, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	second, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewTokenManager("a-completely-different-secret", 15*time.Minute, time.Hour)

	token, err := m.GenerateAccessToken("user-1", "jane@example.com")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret-key-for-testing", -time.Minute, time.Hour)

	token, err := m.GenerateAccessToken("user-1", "jane@example.com")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsUnexpectedMethod(t *testing.T) {
	m := newTestManager()

	// Token signed with "none" must not validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(tokenString)
	assert.Error(t, err)
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	m := newTestManager()

	_, err := m.ValidateAccessToken("not.a.jwt")
	assert.Error(t, err)
}
