package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all backend records
type Base struct {
	ID        uuid.UUID `json:"id" db:"id" validate:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
