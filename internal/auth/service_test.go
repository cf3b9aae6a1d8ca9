package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mgr := NewJWTManager("access-secret-32-chars-long!!!!!", "refresh-secret-32-chars-long!!!!", 15*time.Minute, 24*time.Hour)
	return NewService(mgr, client), mr
}

func TestService_GenerateTokensStoresRefreshID(t *testing.T) {
	svc, mr := setupService(t)

	pair, err := svc.GenerateTokens(context.Background(), "user-1", "u1@example.com")
	require.NoError(t, err)

	claims, err := svc.jwt.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	key := refreshKey("user-1", claims.TokenID)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 24*time.Hour, mr.TTL(key))
}

func TestService_RefreshRotatesToken(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.GenerateTokens(ctx, "user-1", "u1@example.com")
	require.NoError(t, err)

	second, err := svc.RefreshTokens(ctx, first.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)

	// The consumed token cannot be replayed.
	_, err = svc.RefreshTokens(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}

func TestService_LogoutRevokesAllRefreshTokens(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()

	a, err := svc.GenerateTokens(ctx, "user-1", "u1@example.com")
	require.NoError(t, err)
	_, err = svc.GenerateTokens(ctx, "user-1", "u1@example.com")
	require.NoError(t, err)
	other, err := svc.GenerateTokens(ctx, "user-2", "u2@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "user-1"))

	_, err = svc.RefreshTokens(ctx, a.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
	assert.Len(t, mr.Keys(), 1)

	_, err = svc.RefreshTokens(ctx, other.RefreshToken)
	assert.NoError(t, err)
}

func TestService_RedisDown(t *testing.T) {
	svc, mr := setupService(t)
	mr.Close()

	_, err := svc.GenerateTokens(context.Background(), "user-1", "u1@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing refresh token")
}
