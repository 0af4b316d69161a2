package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Medication struct {
	Name   string `json:"name" validate:"required"`
	Dosage string `json:"dosage" validate:"required"`
}

// Medications is stored as a jsonb array.
type Medications []Medication

func (m Medications) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *Medications) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Medications", src)
	}
	return json.Unmarshal(data, m)
}

type Prescription struct {
	Base
	PatientID    uuid.UUID   `json:"patient_id" db:"patient_id" validate:"required"`
	DoctorID     uuid.UUID   `json:"doctor_id" db:"doctor_id" validate:"required"`
	Medications  Medications `json:"medications" db:"medications" validate:"required,min=1,dive"`
	Instructions string      `json:"instructions" db:"instructions"`
	Duration     string      `json:"duration" db:"duration"`
	Doctor       *Doctor     `json:"doctor,omitempty" db:"-"`
}

type CreatePrescriptionRequest struct {
	PatientID    uuid.UUID   `json:"patient_id" validate:"required"`
	DoctorID     uuid.UUID   `json:"doctor_id" validate:"required"`
	Medications  Medications `json:"medications" validate:"required,min=1,dive"`
	Instructions string      `json:"instructions"`
	Duration     string      `json:"duration"`
}

// NewPrescription is the row inserted by a doctor-side caller.
type NewPrescription struct {
	PatientID    uuid.UUID   `json:"patient_id" db:"patient_id"`
	DoctorID     uuid.UUID   `json:"doctor_id" db:"doctor_id"`
	Medications  Medications `json:"medications" db:"medications"`
	Instructions string      `json:"instructions" db:"instructions"`
	Duration     string      `json:"duration" db:"duration"`
}
