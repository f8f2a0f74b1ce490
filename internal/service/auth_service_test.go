package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

func setupAuth(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()
	f := setup(t)
	jwtManager := auth.NewJWTManager("test-secret", "splitledger-test", time.Hour, auth.WithRevocationCheck(f.store))
	authenticator := auth.NewPasswordAuthenticatorWithCost(f.store, bcrypt.MinCost)
	return NewAuthService(authenticator, jwtManager, f.store, nil), jwtManager
}

func TestLogout(t *testing.T) {
	svc, jwtManager := setupAuth(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "logout@example.com", "Lou", "supersecret")
	require.NoError(t, err)
	claims, err := jwtManager.ValidateContext(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = jwtManager.ValidateContext(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)

	require.NoError(t, svc.Logout(ctx, claims), "logging out twice is harmless")

	fresh, err := svc.Login(ctx, "logout@example.com", "supersecret")
	require.NoError(t, err)
	_, err = jwtManager.ValidateContext(ctx, fresh.Token)
	assert.NoError(t, err, "other sessions stay valid")

	err = svc.Logout(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	err = svc.Logout(ctx, &auth.Claims{UserID: session.User.ID})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRegister(t *testing.T) {
	svc, jwtManager := setupAuth(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "Dana@Example.com", "Dana", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)

	claims, err := jwtManager.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	_, profile, err := svc.GetProfile(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FoodVegetarian, profile.FoodType, "profile is created with defaults")

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "dana@example.com", "Other", "supersecret")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, "eve@example.com", "Eve", "short")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("missing display name", func(t *testing.T) {
		_, err := svc.Register(ctx, "eve@example.com", " ", "supersecret")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})
}

func TestLoginAndCheckEmail(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "frank@example.com", "Frank", "password123")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "FRANK@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(ctx, "frank@example.com", "wrongpassword")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	exists, err := svc.CheckEmail(ctx, "frank@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.CheckEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "gina@example.com", "Gina", "password123")
	require.NoError(t, err)
	userID := session.User.ID

	name, phone, food := "Gina R.", "+15551234567", models.FoodNonVegetarian
	user, profile, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{
		DisplayName: &name,
		PhoneNumber: &phone,
		FoodType:    &food,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gina R.", user.DisplayName)
	assert.Equal(t, phone, profile.PhoneNumber)
	assert.Equal(t, models.FoodNonVegetarian, profile.FoodType)

	t.Run("invalid food type", func(t *testing.T) {
		bad := "pescatarian"
		_, _, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{FoodType: &bad})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("invalid phone", func(t *testing.T) {
		bad := "555-CALL-NOW"
		_, _, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{PhoneNumber: &bad})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("wrong current password", func(t *testing.T) {
		_, _, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{
			CurrentPassword: "not-the-password",
			NewPassword:     "newpassword1",
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("change password", func(t *testing.T) {
		_, _, err := svc.UpdateProfile(ctx, userID, ProfileUpdate{
			CurrentPassword: "password123",
			NewPassword:     "newpassword1",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, "gina@example.com", "newpassword1")
		assert.NoError(t, err)
		_, err = svc.Login(ctx, "gina@example.com", "password123")
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	_, _, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
