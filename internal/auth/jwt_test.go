package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret-key-for-testing", 24*time.Hour)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService()

	tok, expiresAt, err := svc.Issue("u-1", "amara@example.com", "USER")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "amara@example.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := newTestTokenService()
	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifyRejectsWrongSecret(t *testing.T) {
	other := NewTokenService("a-different-secret", time.Hour)
	tok, _, err := other.Issue("u-1", "a@b.com", "USER")
	require.NoError(t, err)

	_, err = newTestTokenService().Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret-key-for-testing", -time.Minute)
	tok, _, err := svc.Issue("u-1", "a@b.com", "USER")
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	assert.True(t, CheckPassword("Passw0rd!", hash))
	assert.False(t, CheckPassword("wrong", hash))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
