package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
)

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListAll(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor %s: %w", id, err)
	}
	return doctor, nil
}

func (s *Service) ListBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error) {
	if specialty == "" {
		return nil, apperrors.NewBadRequest("specialty is required", nil)
	}

	doctors, err := s.repo.ListBySpecialty(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors for %s: %w", specialty, err)
	}
	return doctors, nil
}

func (s *Service) ListSpecialties(ctx context.Context) ([]string, error) {
	specialties, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

// Catalog returns the specialties presented on the specialties screen.
func (s *Service) Catalog() []model.Specialty {
	out := make([]model.Specialty, len(catalog))
	for i, sp := range catalog {
		sp.Services = append([]string(nil), sp.Services...)
		out[i] = sp
	}
	return out
}
