package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func (q *queries) CreateProfile(ctx context.Context, profile *models.Profile) error {
	_, err := q.exec(ctx, `
		INSERT INTO profiles (user_id, phone_number, food_type, updated_at)
		VALUES (?, ?, ?, ?)
	`, profile.UserID, profile.PhoneNumber, profile.FoodType, profile.UpdatedAt)
	if isUniqueViolation(err) {
		return storage.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (q *queries) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := q.get(ctx, profile, `
		SELECT user_id, phone_number, food_type, updated_at
		FROM profiles
		WHERE user_id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (q *queries) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	res, err := q.exec(ctx, `
		UPDATE profiles SET phone_number = ?, food_type = ?, updated_at = ?
		WHERE user_id = ?
	`, profile.PhoneNumber, profile.FoodType, profile.UpdatedAt, profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
