package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.NewAppointment) (*model.Appointment, error) {
	var created model.Appointment
	if err := r.client.From(repository.TableAppointments).
		Select(withDoctor).
		Single().
		Insert(ctx, appointment, &created); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	if err := checkShape(r.validator, "appointment", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	var appointments []*model.Appointment
	if err := r.client.From(repository.TableAppointments).
		Select(withDoctor).
		Eq("patient_id", patientID).
		Order("appointment_date", false).
		Execute(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	if err := checkShape(r.validator, "appointment", appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	if err := r.client.From(repository.TableAppointments).
		Eq("id", id).
		Update(ctx, map[string]interface{}{"status": status}); err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return nil
}
