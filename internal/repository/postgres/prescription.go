package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.NewPrescription) (*model.Prescription, error) {
	if len(prescription.Medications) == 0 {
		return nil, fmt.Errorf("prescription needs at least one medication")
	}

	insert := `
		INSERT INTO prescriptions (
			patient_id, doctor_id, medications, instructions, duration
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	query := `
		SELECT ` + prescriptionColumns + `, ` + doctorColumns("doctor") + `
		FROM prescriptions p
		JOIN doctors d ON d.id = p.doctor_id
		WHERE p.id = $1
	`

	var row prescriptionRow
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var id uuid.UUID
		if err := tx.GetContext(ctx, &id, insert,
			prescription.PatientID,
			prescription.DoctorID,
			prescription.Medications,
			prescription.Instructions,
			prescription.Duration,
		); err != nil {
			return err
		}
		return tx.GetContext(ctx, &row, query, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	return row.toModel(), nil
}

func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT ` + prescriptionColumns + `, ` + doctorColumns("doctor") + `
		FROM prescriptions p
		JOIN doctors d ON d.id = p.doctor_id
		WHERE p.patient_id = $1
		ORDER BY p.created_at DESC
	`

	var rows []prescriptionRow
	if err := r.db.SelectContext(ctx, &rows, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	prescriptions := make([]*model.Prescription, 0, len(rows))
	for _, row := range rows {
		prescriptions = append(prescriptions, row.toModel())
	}
	return prescriptions, nil
}
