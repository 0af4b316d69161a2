package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns("") + ` FROM doctors d ORDER BY d.name`

	var rows []doctorRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctorsFromRows(rows), nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns("") + ` FROM doctors d WHERE d.id = $1`

	var row doctorRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", notFound("doctor", err))
	}
	return row.toModel(), nil
}

func (r *doctorRepository) ListBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns("") + ` FROM doctors d WHERE d.specialty = $1 ORDER BY d.name`

	var rows []doctorRow
	if err := r.db.SelectContext(ctx, &rows, query, specialty); err != nil {
		return nil, fmt.Errorf("failed to list doctors by specialty: %w", err)
	}
	return doctorsFromRows(rows), nil
}

func (r *doctorRepository) ListSpecialties(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT specialty FROM doctors WHERE specialty <> '' ORDER BY specialty`

	var specialties []string
	if err := r.db.SelectContext(ctx, &specialties, query); err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func doctorsFromRows(rows []doctorRow) []*model.Doctor {
	doctors := make([]*model.Doctor, 0, len(rows))
	for _, row := range rows {
		doctors = append(doctors, row.toModel())
	}
	return doctors
}
