package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.NewAppointment) (*model.Appointment, error) {
	insert := `
		INSERT INTO appointments (
			patient_id, doctor_id, appointment_date, appointment_time,
			specialty, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	query := `
		SELECT ` + appointmentColumns + `, ` + doctorColumns("doctor") + `
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.id = $1
	`

	var row appointmentRow
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var id uuid.UUID
		if err := tx.GetContext(ctx, &id, insert,
			appointment.PatientID,
			appointment.DoctorID,
			appointment.Date,
			appointment.Time,
			appointment.Specialty,
			appointment.Reason,
			appointment.Status,
		); err != nil {
			return err
		}
		return tx.GetContext(ctx, &row, query, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return row.toModel(), nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `, ` + doctorColumns("doctor") + `
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC
	`

	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointmentsFromRows(rows), nil
}

func (r *appointmentRepository) ListByDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `, ` + doctorColumns("doctor") + `
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.appointment_date = $1::date AND a.status <> $2
		ORDER BY a.appointment_time
	`

	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, date, model.AppointmentStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to list appointments for %s: %w", date, err)
	}
	return appointmentsFromRows(rows), nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return nil
}

func appointmentsFromRows(rows []appointmentRow) []*model.Appointment {
	appointments := make([]*model.Appointment, 0, len(rows))
	for _, row := range rows {
		appointments = append(appointments, row.toModel())
	}
	return appointments
}
