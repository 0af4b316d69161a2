// Package rest implements the repositories over the backend table API.
// Calls carry the caller's access token from the context, so the backend's
// row-level security applies on top of the explicit filters.
package rest

import (
	"github.com/Yasserk123/HealthVision-Projet/internal/backend"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

const withDoctor = "*,doctor:doctors(*)"

type doctorRepository struct {
	client    *backend.Client
	validator validator.Validator
}

type appointmentRepository struct {
	client    *backend.Client
	validator validator.Validator
}

type prescriptionRepository struct {
	client    *backend.Client
	validator validator.Validator
}

type notificationRepository struct {
	client    *backend.Client
	validator validator.Validator
}

type profileRepository struct {
	client    *backend.Client
	validator validator.Validator
}

func NewDoctorRepository(client *backend.Client, v validator.Validator) repository.DoctorRepository {
	return &doctorRepository{client: client, validator: v}
}

func NewAppointmentRepository(client *backend.Client, v validator.Validator) repository.AppointmentRepository {
	return &appointmentRepository{client: client, validator: v}
}

func NewPrescriptionRepository(client *backend.Client, v validator.Validator) repository.PrescriptionRepository {
	return &prescriptionRepository{client: client, validator: v}
}

func NewNotificationRepository(client *backend.Client, v validator.Validator) repository.NotificationRepository {
	return &notificationRepository{client: client, validator: v}
}

func NewProfileRepository(client *backend.Client, v validator.Validator) repository.ProfileRepository {
	return &profileRepository{client: client, validator: v}
}

// NewSet builds every repository on top of client.
func NewSet(client *backend.Client, v validator.Validator) repository.Set {
	return repository.Set{
		Doctors:       NewDoctorRepository(client, v),
		Appointments:  NewAppointmentRepository(client, v),
		Prescriptions: NewPrescriptionRepository(client, v),
		Notifications: NewNotificationRepository(client, v),
		Profiles:      NewProfileRepository(client, v),
	}
}

// checkShape validates decoded records against their struct tags.
func checkShape(v validator.Validator, resource string, records interface{}) error {
	if err := v.Validate(records); err != nil {
		return apperrors.NewMalformed(resource, err)
	}
	return nil
}
