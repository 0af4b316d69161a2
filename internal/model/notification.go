package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeInfo         NotificationType = "info"
	NotificationTypeAppointment  NotificationType = "appointment"
	NotificationTypePrescription NotificationType = "prescription"
	NotificationTypeReminder     NotificationType = "reminder"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeAppointment,
		NotificationTypePrescription, NotificationTypeReminder:
		return true
	}
	return false
}

type Notification struct {
	Base
	UserID  uuid.UUID        `json:"user_id" db:"user_id" validate:"required"`
	Title   string           `json:"title" db:"title"`
	Message string           `json:"message" db:"message"`
	Type    NotificationType `json:"type" db:"type"`
	Read    bool             `json:"read" db:"read"`
}

type NewNotification struct {
	UserID  uuid.UUID        `json:"user_id" db:"user_id"`
	Title   string           `json:"title" db:"title"`
	Message string           `json:"message" db:"message"`
	Type    NotificationType `json:"type" db:"type"`
}

// NotificationEvent is published on the broker after a notification row
// is stored.
type NotificationEvent struct {
	ID             uuid.UUID        `json:"id"`
	NotificationID uuid.UUID        `json:"notification_id"`
	UserID         uuid.UUID        `json:"user_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	CreatedAt      time.Time        `json:"created_at"`
}
