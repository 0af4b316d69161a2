package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

// Status values are the ones stored by the backend.
const (
	AppointmentStatusPending   AppointmentStatus = "En attente"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmé"
	AppointmentStatusCompleted AppointmentStatus = "Terminé"
	AppointmentStatusCancelled AppointmentStatus = "Annulé"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID uuid.UUID         `json:"patient_id" db:"patient_id" validate:"required"`
	DoctorID  uuid.UUID         `json:"doctor_id" db:"doctor_id" validate:"required"`
	Date      string            `json:"appointment_date" db:"appointment_date" validate:"required"`
	Time      string            `json:"appointment_time" db:"appointment_time" validate:"required"`
	Specialty string            `json:"specialty" db:"specialty"`
	Reason    string            `json:"reason" db:"reason"`
	Status    AppointmentStatus `json:"status" db:"status" validate:"required"`
	Doctor    *Doctor           `json:"doctor,omitempty" db:"-"`
}

type CreateAppointmentRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	Date      string    `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	Time      string    `json:"appointment_time" validate:"required,datetime=15:04"`
	Specialty string    `json:"specialty" validate:"required"`
	Reason    string    `json:"reason" validate:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required"`
}

// NewAppointment is the row inserted for a patient's request.
type NewAppointment struct {
	PatientID uuid.UUID         `json:"patient_id" db:"patient_id"`
	DoctorID  uuid.UUID         `json:"doctor_id" db:"doctor_id"`
	Date      string            `json:"appointment_date" db:"appointment_date"`
	Time      string            `json:"appointment_time" db:"appointment_time"`
	Specialty string            `json:"specialty" db:"specialty"`
	Reason    string            `json:"reason,omitempty" db:"reason"`
	Status    AppointmentStatus `json:"status" db:"status"`
}
