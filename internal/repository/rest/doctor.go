package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
)

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	var doctors []*model.Doctor
	if err := r.client.From(repository.TableDoctors).
		Select("*").
		Order("name", true).
		Execute(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	if err := checkShape(r.validator, "doctor", doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.client.From(repository.TableDoctors).
		Select("*").
		Eq("id", id).
		Single().
		Execute(ctx, &doctor); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if err := checkShape(r.validator, "doctor", &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) ListBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error) {
	var doctors []*model.Doctor
	if err := r.client.From(repository.TableDoctors).
		Select("*").
		Eq("specialty", specialty).
		Order("name", true).
		Execute(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("failed to list doctors by specialty: %w", err)
	}
	if err := checkShape(r.validator, "doctor", doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) ListSpecialties(ctx context.Context) ([]string, error) {
	var rows []struct {
		Specialty string `json:"specialty"`
	}
	if err := r.client.From(repository.TableDoctors).
		Select("specialty").
		Order("specialty", true).
		Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	specialties := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Specialty == "" || seen[row.Specialty] {
			continue
		}
		seen[row.Specialty] = true
		specialties = append(specialties, row.Specialty)
	}
	return specialties, nil
}
