// Package postgres implements the repositories directly against the
// backend's database. It bypasses row-level security, so every query that
// reads patient data filters by the owning id.
package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

type prescriptionRepository struct {
	BaseRepository
}

type notificationRepository struct {
	BaseRepository
}

type profileRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

// NewAppointmentScheduleRepository returns the cross-patient appointment
// reader used by the reminder job.
func NewAppointmentScheduleRepository(db *sqlx.DB) repository.AppointmentScheduleRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{NewBaseRepository(db)}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{NewBaseRepository(db)}
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{NewBaseRepository(db)}
}

func NewSet(db *sqlx.DB) repository.Set {
	return repository.Set{
		Doctors:       NewDoctorRepository(db),
		Appointments:  NewAppointmentRepository(db),
		Prescriptions: NewPrescriptionRepository(db),
		Notifications: NewNotificationRepository(db),
		Profiles:      NewProfileRepository(db),
	}
}
