package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `db:"id"`

	// Email is the user's email address (unique). Used for login.
	Email string `db:"email"`

	// DisplayName is the name shown to other group members.
	DisplayName string `db:"display_name"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `db:"password_hash"`

	CreatedAt int64 `db:"created_at"`
	UpdatedAt int64 `db:"updated_at"`
}

// NewUser creates a User with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().UnixMilli()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Food preferences a profile may carry.
const (
	FoodVegetarian    = "vegetarian"
	FoodNonVegetarian = "non-vegetarian"
)

// Profile holds optional details about a user.
// Exactly one profile exists per user; it is created right after registration.
type Profile struct {
	UserID      string `db:"user_id"`
	PhoneNumber string `db:"phone_number"`
	FoodType    string `db:"food_type"`
	UpdatedAt   int64  `db:"updated_at"`
}

// ValidFoodType reports whether s is an accepted food preference.
func ValidFoodType(s string) bool {
	return s == FoodVegetarian || s == FoodNonVegetarian
}
