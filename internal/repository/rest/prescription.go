package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
)

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.NewPrescription) (*model.Prescription, error) {
	var created model.Prescription
	if err := r.client.From(repository.TablePrescriptions).
		Select(withDoctor).
		Single().
		Insert(ctx, prescription, &created); err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	if err := checkShape(r.validator, "prescription", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	var prescriptions []*model.Prescription
	if err := r.client.From(repository.TablePrescriptions).
		Select(withDoctor).
		Eq("patient_id", patientID).
		Order("created_at", false).
		Execute(ctx, &prescriptions); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	if err := checkShape(r.validator, "prescription", prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}
