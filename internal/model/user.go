package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies what an authenticated user may do in the portal.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// User is the identity of the current session, hydrated from the
// credential endpoint and the user_profiles table.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
}

// UserProfile is a row of the user_profiles table.
type UserProfile struct {
	ID               uuid.UUID `json:"id" db:"id" validate:"required"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name" db:"last_name"`
	Phone            string    `json:"phone,omitempty" db:"phone"`
	DateOfBirth      string    `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Address          string    `json:"address,omitempty" db:"address"`
	EmergencyContact string    `json:"emergency_contact,omitempty" db:"emergency_contact"`
	CreatedAt        time.Time `json:"created_at,omitempty" db:"created_at"`
}

// DisplayName joins first and last name.
func (p *UserProfile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
