package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models/dto"
)

func TestSignUpAndLogin(t *testing.T) {
	tc := SetupTestContext(t)

	signup := dto.SignUpRequest{Email: "Alice@Example.com", Password: "correct-horse", DisplayName: "Alice"}
	w := PerformRequest(tc.Router, http.MethodPost, "/auth/signup", signup, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.AuthResponse](t, w)
	assert.Equal(t, "alice@example.com", created.User.Email)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, 3600, created.ExpiresIn)

	// Same email again
	w = PerformRequest(tc.Router, http.MethodPost, "/auth/signup", signup, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, w).Code)

	w = PerformRequest(tc.Router, http.MethodPost, "/auth/login",
		dto.LoginRequest{Email: "alice@example.com", Password: "correct-horse"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.User.ID, decode[dto.AuthResponse](t, w).User.ID)

	w = PerformRequest(tc.Router, http.MethodPost, "/auth/login",
		dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	tc := SetupTestContext(t)

	w := PerformRequest(tc.Router, http.MethodPost, "/auth/signup",
		dto.SignUpRequest{Email: "bob@example.com", Password: "short", DisplayName: "Bob"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decode[dto.ErrorResponse](t, w).Code)
}

func TestCheckEmail(t *testing.T) {
	tc := SetupTestContext(t)
	PerformRequest(tc.Router, http.MethodPost, "/auth/signup",
		dto.SignUpRequest{Email: "carol@example.com", Password: "correct-horse", DisplayName: "Carol"}, nil)

	w := PerformRequest(tc.Router, http.MethodPost, "/auth/check-email", dto.CheckEmailRequest{Email: "carol@example.com"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.CheckEmailResponse](t, w).Exists)

	w = PerformRequest(tc.Router, http.MethodPost, "/auth/check-email", dto.CheckEmailRequest{Email: "nobody@example.com"}, nil)
	assert.False(t, decode[dto.CheckEmailResponse](t, w).Exists)
}

func TestLogoutRevokesToken(t *testing.T) {
	tc := SetupTestContext(t)
	alice := tc.signUp(t, "alice")

	w := PerformRequest(tc.Router, http.MethodGet, "/profile", nil, AuthHeaders(alice.Token))
	require.Equal(t, http.StatusOK, w.Code)
	email := decode[dto.ProfileResponse](t, w).User.Email

	// A second session for the same user must survive the logout.
	w = PerformRequest(tc.Router, http.MethodPost, "/auth/login",
		dto.LoginRequest{Email: email, Password: "correct-horse"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	other := decode[dto.AuthResponse](t, w).Token

	w = PerformRequest(tc.Router, http.MethodPost, "/auth/logout", nil, AuthHeaders(alice.Token))
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = PerformRequest(tc.Router, http.MethodGet, "/groups", nil, AuthHeaders(alice.Token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[dto.ErrorResponse](t, w).Code)

	w = PerformRequest(tc.Router, http.MethodPost, "/auth/logout", nil, AuthHeaders(alice.Token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = PerformRequest(tc.Router, http.MethodGet, "/groups", nil, AuthHeaders(other))
	assert.Equal(t, http.StatusOK, w.Code)

	w = PerformRequest(tc.Router, http.MethodPost, "/auth/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	tc := SetupTestContext(t)

	w := PerformRequest(tc.Router, http.MethodGet, "/groups", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[dto.ErrorResponse](t, w).Code)

	w = PerformRequest(tc.Router, http.MethodGet, "/groups", nil, AuthHeaders("not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileUpdate(t *testing.T) {
	tc := SetupTestContext(t)
	alice := tc.signUp(t, "alice")

	w := PerformRequest(tc.Router, http.MethodGet, "/profile", nil, AuthHeaders(alice.Token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice.ID, decode[dto.ProfileResponse](t, w).User.ID)

	w = PerformRequest(tc.Router, http.MethodPut, "/profile",
		`{"phoneNumber":"+61400000000","foodType":"vegetarian"}`, AuthHeaders(alice.Token))
	assert.Equal(t, http.StatusOK, w.Code)
	profile := decode[dto.ProfileResponse](t, w)
	assert.Equal(t, "+61400000000", profile.PhoneNumber)
	assert.Equal(t, "vegetarian", profile.FoodType)

	w = PerformRequest(tc.Router, http.MethodPut, "/profile", `{"foodType":"carnivore"}`, AuthHeaders(alice.Token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	tc := SetupTestContext(t)

	w := PerformRequest(tc.Router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
}
