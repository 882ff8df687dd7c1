package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docentia/simulacro-backend/internal/config"
	"github.com/docentia/simulacro-backend/internal/model"
)

func newTestAuth(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, rdb), mr
}

func TestPasswordHashRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t)

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	assert.NoError(t, auth.CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestStudentTokenRegistersSession(t *testing.T) {
	auth, mr := newTestAuth(t)
	ctx := context.Background()

	u := &model.User{ID: 7, Role: model.RoleStudent, IsPremium: true}
	token, err := auth.GenerateToken(ctx, u)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.True(t, claims.IsPremium)

	stored, err := mr.Get(config.CacheKey.UserSessionKey(7))
	require.NoError(t, err)
	assert.Equal(t, claims.ID, stored)

	assert.NoError(t, auth.ValidateUserSession(ctx, 7, claims.ID))
}

func TestSecondStudentLoginRejected(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	u := &model.User{ID: 7, Role: model.RoleStudent}
	_, err := auth.GenerateToken(ctx, u)
	require.NoError(t, err)

	_, err = auth.GenerateToken(ctx, u)
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)
}

func TestLoginAllowedAfterSessionExpiry(t *testing.T) {
	auth, mr := newTestAuth(t)
	ctx := context.Background()

	u := &model.User{ID: 7, Role: model.RoleStudent}
	_, err := auth.GenerateToken(ctx, u)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = auth.GenerateToken(ctx, u)
	assert.NoError(t, err)
}

func TestAdminTokenSkipsSessionLock(t *testing.T) {
	auth, mr := newTestAuth(t)
	ctx := context.Background()

	u := &model.User{ID: 3, Role: model.RoleAdmin}
	_, err := auth.GenerateToken(ctx, u)
	require.NoError(t, err)
	_, err = auth.GenerateToken(ctx, u)
	require.NoError(t, err)

	assert.False(t, mr.Exists(config.CacheKey.UserSessionKey(3)))
}

func TestResetSessionInvalidatesToken(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	u := &model.User{ID: 7, Role: model.RoleStudent}
	token, err := auth.GenerateToken(ctx, u)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, auth.ResetUserSession(ctx, 7))
	assert.Error(t, auth.ValidateUserSession(ctx, 7, claims.ID))

	// And a fresh login supersedes the old JTI.
	_, err = auth.GenerateToken(ctx, u)
	require.NoError(t, err)
	assert.Error(t, auth.ValidateUserSession(ctx, 7, claims.ID))
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	u := &model.User{ID: 9, Role: model.RoleAdmin}
	token, err := auth.GenerateToken(ctx, u)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token + "x")
	assert.Error(t, err)

	_, err = auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}
