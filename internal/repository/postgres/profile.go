package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

func (r *profileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	query := `INSERT INTO user_profiles (id, first_name, last_name) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, profile.ID, profile.FirstName, profile.LastName); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	query := `
		SELECT id, created_at,
			COALESCE(first_name, '') AS first_name,
			COALESCE(last_name, '') AS last_name,
			COALESCE(phone, '') AS phone,
			COALESCE(date_of_birth::text, '') AS date_of_birth,
			COALESCE(address, '') AS address,
			COALESCE(emergency_contact, '') AS emergency_contact
		FROM user_profiles
		WHERE id = $1
	`

	var profile model.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", notFound("profile", err))
	}
	return &profile, nil
}
