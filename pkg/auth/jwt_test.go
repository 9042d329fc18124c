package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-backend/pkg/common"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	generator, err := NewJWTGenerator("test-secret", "notes-backend", time.Hour)
	require.NoError(t, err)
	validator, err := NewJWTValidator("test-secret", "notes-backend")
	require.NoError(t, err)

	token, err := generator.GenerateToken("user-1", common.RoleAdmin)
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, common.RoleAdmin, claims.Role)
}

func TestValidateTokenDefaultsToUserRole(t *testing.T) {
	generator, err := NewJWTGenerator("test-secret", "", time.Hour)
	require.NoError(t, err)
	validator, err := NewJWTValidator("test-secret", "")
	require.NoError(t, err)

	token, err := generator.GenerateToken("user-1", "")
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, common.RoleUser, claims.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	generator, err := NewJWTGenerator("secret-a", "", time.Hour)
	require.NoError(t, err)
	validator, err := NewJWTValidator("secret-b", "")
	require.NoError(t, err)

	token, err := generator.GenerateToken("user-1", common.RoleUser)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	generator := &JWTGenerator{secret: []byte("test-secret"), expiry: -time.Hour}
	validator, err := NewJWTValidator("test-secret", "")
	require.NoError(t, err)

	token, err := generator.GenerateToken("user-1", common.RoleUser)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	generator, err := NewJWTGenerator("test-secret", "someone-else", time.Hour)
	require.NoError(t, err)
	validator, err := NewJWTValidator("test-secret", "notes-backend")
	require.NoError(t, err)

	token, err := generator.GenerateToken("user-1", common.RoleUser)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenBucketLimiter(t *testing.T) {
	limiter := NewTokenBucketLimiter(2, time.Hour)

	allowed, err := limiter.Allow(context.Background(), "ip-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "ip-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "ip-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// other keys are unaffected
	allowed, err = limiter.Allow(context.Background(), "ip-2")
	require.NoError(t, err)
	assert.True(t, allowed)

	// reset restores the bucket
	require.NoError(t, limiter.Reset(context.Background(), "ip-1"))
	allowed, err = limiter.Allow(context.Background(), "ip-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
