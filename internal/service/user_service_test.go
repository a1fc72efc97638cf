package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
)

func TestUserService_ProfileUpdates(t *testing.T) {
	env := newTestEnv(t)
	nuts := env.createAllergen(t, "nuts")
	milk := env.createAllergen(t, "milk")
	user := env.createUser(t, "kid@school.test", model.RoleStudent, "10", nuts)
	svc := NewUserService(env.store, env.cache)
	ctx := context.Background()

	cached, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{nuts.ID}, cached.AllergenIDs())
	require.True(t, env.redis.Exists(userCacheKey(user.ID)))

	ids := []uint{milk.ID}
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{AllergenIDs: &ids, Preferences: strPtr("no onions")})
	require.NoError(t, err)
	assert.Equal(t, []uint{milk.ID}, updated.AllergenIDs())
	assert.Equal(t, "no onions", updated.Preferences)
	assert.False(t, env.redis.Exists(userCacheKey(user.ID)))

	bad := []uint{404}
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{AllergenIDs: &bad})
	assert.ErrorIs(t, err, apperrors.ErrAllergenNotFound)

	info, err := svc.UpdatePersonalInfo(ctx, user.ID, PersonalInfoUpdate{FullName: strPtr("Kid Junior"), ClassName: strPtr("7A")})
	require.NoError(t, err)
	assert.Equal(t, "Kid Junior", info.FullName)
	assert.Equal(t, "7A", info.ClassName)
	assert.Equal(t, "no onions", info.Preferences)

	_, err = svc.GetUser(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := createLoginUser(t, env, "kid@school.test", "old-secret", true)
	svc := NewUserService(env.store, env.cache)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.ID, "wrong", "new-secret")
	assert.ErrorIs(t, err, apperrors.ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-secret", "new-secret"))
	stored, err := env.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-secret")))
}
