package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	maxDisplayName = 100
	maxPhoneDigits = 15

	// revocationGrace keeps expired revocations around for longer than
	// any configured token leeway.
	revocationGrace = time.Hour
)

// Session is the result of a successful registration or login.
type Session struct {
	User    *models.User
	Profile *models.Profile
	Token   string
}

// ProfileUpdate carries the optional fields of a profile edit.
// A nil pointer leaves the field unchanged. NewPassword requires
// CurrentPassword.
type ProfileUpdate struct {
	DisplayName     *string
	PhoneNumber     *string
	FoodType        *string
	CurrentPassword string
	NewPassword     string
}

// AuthService handles registration, login and profiles.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
	opts          options
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger, opts ...Option) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
		opts:          buildOptions(opts),
	}
}

// Register creates a new user account and its profile, then issues a token.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	s.logger.Info("Register request", "email", email)

	// Validate input
	if strings.TrimSpace(email) == "" {
		return nil, apperr.InvalidArgument("email is required")
	}
	displayName, err := requireText("display_name", displayName, 1, maxDisplayName)
	if err != nil {
		return nil, err
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, apperr.Conflict("%v", err)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
			return nil, apperr.InvalidArgument("%v", err)
		}
		return nil, apperr.Internal(err, "failed to register user")
	}

	// The profile is created here, once, as part of registration.
	profile := &models.Profile{
		UserID:    user.ID,
		FoodType:  models.FoodVegetarian,
		UpdatedAt: s.opts.now().UnixMilli(),
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		s.logger.Error("Failed to create profile", "user_id", user.ID, "error", err)
		return nil, apperr.Internal(err, "failed to create profile")
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, apperr.Internal(err, "failed to issue token")
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return &Session{User: user, Profile: profile, Token: token}, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	s.logger.Info("Login request", "email", email)

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.InvalidArgument("email and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("Login failed", "email", email, "error", err)
			return nil, apperr.New(apperr.KindUnauthenticated, "%v", auth.ErrInvalidCredentials)
		}
		s.logger.Error("Login failed", "email", email, "error", err)
		return nil, apperr.Internal(err, "failed to authenticate")
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, apperr.Internal(err, "failed to issue token")
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return &Session{User: user, Token: token}, nil
}

// Logout revokes the token described by claims until it would have expired
// on its own. Logging out twice with the same token is not an error.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return apperr.New(apperr.KindUnauthenticated, "token cannot be revoked")
	}
	s.logger.Info("Logout request", "user_id", claims.UserID, "jti", claims.ID)

	if err := s.store.RevokeToken(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Unix()); err != nil {
		s.logger.Error("Failed to revoke token", "user_id", claims.UserID, "error", err)
		return apperr.Internal(err, "failed to log out")
	}

	// Revocations for tokens past their expiry can never match again.
	removed, err := s.store.DeleteExpiredTokens(ctx, s.opts.now().Add(-revocationGrace).Unix())
	if err != nil {
		s.logger.Warn("Failed to prune revoked tokens", "error", err)
	} else if removed > 0 {
		s.logger.Debug("Pruned revoked tokens", "count", removed)
	}

	s.logger.Info("User logged out", "user_id", claims.UserID)
	return nil
}

// CheckEmail reports whether an account already uses the email.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return false, apperr.InvalidArgument("email is required")
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Internal(err, "failed to check email")
	}
	return true, nil
}

// GetProfile returns the user together with their profile.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, *models.Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, storeError(err, "user "+userID+" not found", "failed to load user")
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, storeError(err, "profile for "+userID+" not found", "failed to load profile")
	}
	return user, profile, nil
}

// UpdateProfile applies a profile edit. A password change requires the
// current password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, *models.Profile, error) {
	s.logger.Info("UpdateProfile request", "user_id", userID)

	var (
		user    *models.User
		profile *models.Profile
	)
	err := s.store.WithTx(ctx, func(q storage.Queries) error {
		var err error
		if user, err = q.GetUserByID(ctx, userID); err != nil {
			return storeError(err, "user "+userID+" not found", "failed to load user")
		}
		if profile, err = q.GetProfile(ctx, userID); err != nil {
			return storeError(err, "profile for "+userID+" not found", "failed to load profile")
		}

		if upd.DisplayName != nil {
			if user.DisplayName, err = requireText("display_name", *upd.DisplayName, 1, maxDisplayName); err != nil {
				return err
			}
		}
		if upd.PhoneNumber != nil {
			phone := strings.TrimSpace(*upd.PhoneNumber)
			if !validPhone(phone) {
				return apperr.InvalidArgument("phone_number must be up to %d digits", maxPhoneDigits)
			}
			profile.PhoneNumber = phone
		}
		if upd.FoodType != nil {
			if !models.ValidFoodType(*upd.FoodType) {
				return apperr.InvalidArgument("food_type must be %q or %q", models.FoodVegetarian, models.FoodNonVegetarian)
			}
			profile.FoodType = *upd.FoodType
		}
		if upd.NewPassword != "" {
			if err := s.authenticator.ChangeCredential(user, upd.CurrentPassword, upd.NewPassword); err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					return apperr.InvalidArgument("current password is incorrect")
				}
				if errors.Is(err, auth.ErrWeakPassword) {
					return apperr.InvalidArgument("%v", err)
				}
				return apperr.Internal(err, "failed to change password")
			}
		}

		now := s.opts.now().UnixMilli()
		user.UpdatedAt = now
		profile.UpdatedAt = now
		if err := q.UpdateUser(ctx, user); err != nil {
			return storeError(err, "user "+userID+" not found", "failed to update user")
		}
		if err := q.UpdateProfile(ctx, profile); err != nil {
			return storeError(err, "profile for "+userID+" not found", "failed to update profile")
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("UpdateProfile failed", "user_id", userID, "error", err)
		return nil, nil, err
	}

	s.logger.Info("Profile updated", "user_id", userID)
	return user, profile, nil
}

// validPhone accepts an empty string or up to 15 digits with an optional
// leading plus sign.
func validPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) > maxPhoneDigits {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return phone != "+"
}
