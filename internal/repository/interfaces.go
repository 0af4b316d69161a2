package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

// Table names of the hosted backend.
const (
	TableDoctors       = "doctors"
	TableAppointments  = "appointments"
	TablePrescriptions = "prescriptions"
	TableNotifications = "notifications"
	TableProfiles      = "user_profiles"
)

// All repository interfaces in one file
type (
	// DoctorRepository reads the doctor directory. Lists are ordered by name.
	DoctorRepository interface {
		List(ctx context.Context) ([]*model.Doctor, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		ListBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error)
		ListSpecialties(ctx context.Context) ([]string, error)
	}

	AppointmentRepository interface {
		// Create inserts the row and returns it with the doctor embedded.
		Create(ctx context.Context, appointment *model.NewAppointment) (*model.Appointment, error)
		// ListByPatient returns newest appointment date first.
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
	}

	// AppointmentScheduleRepository scans appointments across patients.
	AppointmentScheduleRepository interface {
		// ListByDate returns non-cancelled appointments on date (YYYY-MM-DD)
		// with the doctor embedded.
		ListByDate(ctx context.Context, date string) ([]*model.Appointment, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.NewPrescription) (*model.Prescription, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.NewNotification) (*model.Notification, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id, userID uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) error
	}

	ProfileRepository interface {
		Create(ctx context.Context, profile *model.UserProfile) error
		Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	}
)

// Set bundles one driver's repositories.
type Set struct {
	Doctors       DoctorRepository
	Appointments  AppointmentRepository
	Prescriptions PrescriptionRepository
	Notifications NotificationRepository
	Profiles      ProfileRepository
}
