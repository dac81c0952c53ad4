package auth

import (
	"crypto/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdamapp/bookdam-server/internal/domain"
)

func newTestTokenService(t *testing.T, duration time.Duration) *TokenService {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	svc, err := NewTokenService(key, duration)
	require.NoError(t, err)
	return svc
}

func testUser() *domain.User {
	return &domain.User{
		ID:    "user_test123",
		Email: "reader@example.com",
	}
}

func TestNewTokenServiceRejectsBadKeySize(t *testing.T) {
	_, err := NewTokenService(make([]byte, 16), time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(nil, time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_test123", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "bookdam-server", claims.Issuer)
	assert.Equal(t, "user_test123", claims.Subject)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessTokenWrongKey(t *testing.T) {
	svc1 := newTestTokenService(t, time.Hour)
	svc2 := newTestTokenService(t, time.Hour)

	token, err := svc1.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc2.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessTokenGarbage(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	_, err := svc.VerifyAccessToken("v4.local.garbage")
	assert.Error(t, err)
}

func TestLoadOrGenerateKey(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "bookdam-key-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	key1, err := LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	assert.Len(t, key1, 32)

	// Second load returns the same key.
	key2, err := LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
}
