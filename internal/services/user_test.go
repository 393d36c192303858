package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(users *memUsers) *AuthService {
	svc := NewAuthService(users, "test-secret", time.Hour, 24*time.Hour)
	svc.hashCost = bcrypt.MinCost
	svc.now = fixedClock
	return svc
}

func registerUser(t *testing.T, svc *AuthService, email string) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Asha Rao",
		Email:    email,
		Password: "hunter22",
	})
	require.NoError(t, err)
}

func TestAuthService_Tokens(t *testing.T) {
	svc := newTestAuth(newMemUsers())

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.GenerateJWT("a@example.com", tokenTypeAccess, time.Hour)
		require.NoError(t, err)

		email, err := svc.ValidateJWT(token, tokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", email)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := svc.GenerateJWT("a@example.com", tokenTypeAccess, -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(token, tokenTypeAccess)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(newMemUsers(), "another-secret", time.Hour, time.Hour)
		other.now = fixedClock
		token, err := other.GenerateJWT("a@example.com", tokenTypeAccess, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(token, tokenTypeAccess)
		assert.Error(t, err)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "a@example.com",
			"exp": fixedNow.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(token, tokenTypeAccess)
		assert.Error(t, err)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		token, err := svc.GenerateJWT("a@example.com", tokenTypeRefresh, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(token, tokenTypeAccess)
		assert.Error(t, err)
	})

	t.Run("missing typ is access", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "a@example.com",
			"exp": fixedNow.Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		email, err := svc.ValidateJWT(token, tokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", email)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(newMemUsers())
	registerUser(t, svc, "asha@example.com")

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.GenerateJWT("asha@example.com", tokenTypeAccess, time.Hour)
		require.NoError(t, err)

		user, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", user.Email)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.EqualError(t, err, "Invalid token")
	})

	t.Run("unknown subject", func(t *testing.T) {
		token, err := svc.GenerateJWT("ghost@example.com", tokenTypeAccess, time.Hour)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("admin only", func(t *testing.T) {
		users := newMemUsers()
		svc := newTestAuth(users)
		registerUser(t, svc, "asha@example.com")
		registerUser(t, svc, "chief@example.com")
		users.users[2].Admin = true

		token, err := svc.GenerateJWT("asha@example.com", tokenTypeAccess, time.Hour)
		require.NoError(t, err)
		_, err = svc.AuthenticateAdmin(ctx, token)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.EqualError(t, err, "Admin access required")

		token, err = svc.GenerateJWT("chief@example.com", tokenTypeAccess, time.Hour)
		require.NoError(t, err)
		admin, err := svc.AuthenticateAdmin(ctx, token)
		require.NoError(t, err)
		assert.True(t, admin.Admin)

		_, err = svc.AuthenticateAdmin(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("identify falls back to anonymous", func(t *testing.T) {
		assert.True(t, svc.Identify(ctx, "").IsAnonymous())
		assert.True(t, svc.Identify(ctx, "not-a-jwt").IsAnonymous())

		token, err := svc.GenerateJWT("asha@example.com", tokenTypeAccess, time.Hour)
		require.NoError(t, err)
		identity := svc.Identify(ctx, token)
		user, ok := identity.User()
		require.True(t, ok)
		assert.Equal(t, "asha@example.com", user.Email)
	})
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	svc := newTestAuth(users)

	user, err := svc.Register(ctx, RegisterRequest{
		FullName:    "Asha Rao",
		Email:       "  Asha@Example.com ",
		Password:    "hunter22",
		PhoneNumber: "9999999999",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NotEqual(t, "hunter22", user.Password)
	require.NotNil(t, user.PhoneNumber)
	assert.Nil(t, user.Address)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "asha@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "b@example.com"})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("success records location", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{
			Email:       "asha@example.com",
			Password:    "hunter22",
			Coordinates: &Coordinates{Latitude: 12.97, Longitude: 77.59},
		})
		require.NoError(t, err)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, "Asha Rao", resp.Username)
		assert.Equal(t, user.ID, resp.UserID)

		authed, err := svc.Authenticate(ctx, resp.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, authed.Latitude)
		assert.Equal(t, 12.97, *authed.Latitude)
		assert.Equal(t, 77.59, *authed.Longitude)

		_, err = svc.Authenticate(ctx, resp.RefreshToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("refresh", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "hunter22"})
		require.NoError(t, err)

		refreshed, err := svc.Refresh(ctx, resp.RefreshToken)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, refreshed.AccessToken)
		assert.NoError(t, err)

		_, err = svc.Refresh(ctx, resp.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("push token", func(t *testing.T) {
		require.NoError(t, svc.UpdatePushToken(ctx, user, "device-1"))
		stored, err := users.byID(user.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.PushToken)
		assert.Equal(t, "device-1", *stored.PushToken)

		require.NoError(t, svc.UpdatePushToken(ctx, user, ""))
		stored, err = users.byID(user.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.PushToken)
	})
}
