package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

const testSecret = "test-secret"

func newAuthFixture(t *testing.T) (AuthService, *miniredis.Miniredis, func(t *testing.T, name, role, password string, active bool) models.User) {
	t.Helper()
	db := newTestDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewAuthService(repository.NewUserRepository(db), redisClient, testSecret, time.Hour, newValidator(), nopLogger())

	seed := func(t *testing.T, name, role, password string, active bool) models.User {
		return makeUserWithPassword(t, db, name, role, password, active)
	}

	return svc, mr, seed
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _, seed := newAuthFixture(t)
	ctx := context.Background()

	user := seed(t, "admin", models.RoleAdmin, "correct horse", true)

	response, err := svc.Login(ctx, dto.LoginRequest{Email: "ADMIN@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", response.TokenType)
	require.EqualValues(t, 3600, response.ExpiresIn)
	require.Equal(t, user.Email, response.User.Email)

	parsed, err := jwt.Parse(response.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleAdmin, claims["role"])
	require.NotEmpty(t, claims["jti"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, seed := newAuthFixture(t)
	ctx := context.Background()

	seed(t, "admin", models.RoleAdmin, "correct horse", true)

	_, err := svc.Login(ctx, dto.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, _, seed := newAuthFixture(t)
	ctx := context.Background()

	seed(t, "former", models.RoleStaff, "correct horse", false)

	_, err := svc.Login(ctx, dto.LoginRequest{Email: "former@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrAccountInactive)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, mr, _ := newAuthFixture(t)
	ctx := context.Background()

	jti := "token-123"
	require.NoError(t, svc.Logout(ctx, jti, time.Now().Add(time.Hour)))

	revoked, err := svc.IsRevoked(ctx, jti)
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = svc.IsRevoked(ctx, "other-token")
	require.NoError(t, err)
	require.False(t, revoked)

	// The denylist entry expires with the token itself.
	mr.FastForward(2 * time.Hour)
	revoked, err = svc.IsRevoked(ctx, jti)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestLogoutExpiredTokenIsNoop(t *testing.T) {
	svc, mr, _ := newAuthFixture(t)

	require.NoError(t, svc.Logout(context.Background(), "stale", time.Now().Add(-time.Minute)))
	require.Empty(t, mr.Keys())
}
