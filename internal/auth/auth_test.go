package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/cache"
	"canteen/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour)
	user := &model.User{ID: 7, Email: "kid@school.test", Role: model.RoleStudent}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, time.Minute.Seconds(), claims.RemainingTTL(time.Now()).Seconds(), 5)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTService("one", 0, 0)
	verifier := NewJWTService("two", 0, 0)

	token, err := issuer.GenerateAccessToken(&model.User{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Nanosecond, 0)
	token, err := svc.GenerateAccessToken(&model.User{ID: 1})
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(cache.New(mr.Addr(), "", 0))
	ctx := context.Background()

	require.NoError(t, store.StoreRefreshToken(ctx, "jti-1", 42, time.Hour))
	userID, err := store.GetRefreshToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	require.NoError(t, store.DeleteRefreshToken(ctx, "jti-1"))
	_, err = store.GetRefreshToken(ctx, "jti-1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	blacklisted, _ := store.IsAccessTokenBlacklisted(ctx, "jti-2")
	assert.False(t, blacklisted)
	require.NoError(t, store.BlacklistAccessToken(ctx, "jti-2", time.Minute))
	blacklisted, _ = store.IsAccessTokenBlacklisted(ctx, "jti-2")
	assert.True(t, blacklisted)

	mr.FastForward(2 * time.Minute)
	blacklisted, _ = store.IsAccessTokenBlacklisted(ctx, "jti-2")
	assert.False(t, blacklisted)
}
