package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
)

type profileRow struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func (r *profileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	row := profileRow{ID: profile.ID, FirstName: profile.FirstName, LastName: profile.LastName}
	if err := r.client.From(repository.TableProfiles).Insert(ctx, row, nil); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.client.From(repository.TableProfiles).
		Select("*").
		Eq("id", id).
		Single().
		Execute(ctx, &profile); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if err := checkShape(r.validator, "profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
