package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	uc, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uc.UserID)
	assert.Equal(t, "admin@example.com", uc.Email)
	assert.Equal(t, []string{RoleAdmin}, uc.Roles)
	assert.True(t, uc.IsAdmin)
}

func TestJWT_WrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issuer.GenerateAccessToken("user-1", "clerk@example.com", RoleClerk)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken("user-1", "clerk@example.com", RoleClerk)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
